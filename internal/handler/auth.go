package handler

import (
	"fmt"
	"log"
	"time"

	"training-portal/internal/config"
	"training-portal/internal/middleware"
	"training-portal/internal/model"
	"training-portal/internal/pkg/crypto"
	"training-portal/internal/pkg/response"
	"training-portal/internal/pkg/utils"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	tokens *service.TokenService
	mailer service.Mailer
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		tokens: service.NewTokenService(model.DB),
		mailer: service.NewEmailService(),
	}
}

// RegisterRequest creates a new portal account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	NationalID  string `json:"national_id"`
	Citizenship string `json:"citizenship"`
}

// LoginRequest authenticates with credentials; code carries the second
// factor when the account has it enabled.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Code     string `json:"code"`
}

// Register creates the account and emails a verification link. Login is
// refused until the address is verified.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var existing model.User
	if err := model.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		response.Error(c, 400, "This email is already registered")
		return
	}

	citizenship := model.Citizenship(req.Citizenship)
	switch citizenship {
	case model.CitizenshipCitizen, model.CitizenshipEastAfrican, model.CitizenshipGlobal:
	case "":
		citizenship = model.CitizenshipCitizen
	default:
		response.BadRequest(c, "Invalid citizenship")
		return
	}

	user := model.User{
		Email:       req.Email,
		Name:        req.Name,
		Phone:       req.Phone,
		NationalID:  req.NationalID,
		Role:        model.UserRoleUser,
		Citizenship: citizenship,
	}
	if err := user.SetPassword(req.Password); err != nil {
		response.ServerError(c, "Failed to secure password")
		return
	}

	if err := model.DB.Create(&user).Error; err != nil {
		response.ServerError(c, "Failed to create account")
		return
	}

	h.sendVerification(user.Email)

	response.SuccessWithMessage(c, "Account created. Check your email to verify your address.", gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Login checks credentials, enforces email verification and the second
// factor, and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ip := c.ClientIP()
	ipLimiter := service.GetIPLoginLimiter()
	if locked, remaining := ipLimiter.IsLocked(ip); locked {
		response.Error(c, 429, fmt.Sprintf("Too many attempts from this address, try again in %d minutes", int(remaining.Minutes())+1))
		return
	}

	limiter := service.GetLoginLimiter()
	if locked, remaining := limiter.IsLocked(req.Email); locked {
		response.Error(c, 429, fmt.Sprintf("Account locked, try again in %d minutes", int(remaining.Minutes())+1))
		return
	}

	var user model.User
	if err := model.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		limiter.RecordFailure(req.Email)
		ipLimiter.RecordFailure(ip)
		response.Unauthorized(c, "Invalid email or password")
		return
	}

	if !user.CheckPassword(req.Password) {
		limiter.RecordFailure(req.Email)
		ipLimiter.RecordFailure(ip)
		response.Unauthorized(c, "Invalid email or password")
		return
	}

	if !user.EmailVerified() {
		h.sendVerification(user.Email)
		response.Error(c, 403, "Email not verified. A new verification link has been sent.")
		return
	}

	if user.TwoFactorEnabled {
		if req.Code == "" {
			if !h.tokens.ConsumeTwoFactorConfirmation(user.ID) {
				token, err := h.tokens.IssueTwoFactor(user.Email)
				if err != nil {
					response.ServerError(c, "Failed to issue two-factor code")
					return
				}
				h.sendTwoFactorCode(user.Email, token.Token)
				response.SuccessWithMessage(c, "Two-factor code sent", gin.H{"two_factor": true})
				return
			}
		} else {
			if err := h.tokens.ConsumeTwoFactor(user.Email, req.Code); err != nil {
				limiter.RecordFailure(req.Email)
				response.Unauthorized(c, "Invalid or expired two-factor code")
				return
			}
			if err := h.tokens.ConfirmTwoFactor(user.ID); err != nil {
				response.ServerError(c, "Failed to confirm two-factor login")
				return
			}
		}
	}

	limiter.RecordSuccess(req.Email)
	ipLimiter.RecordSuccess(ip)

	now := time.Now()
	model.DB.Model(&user).Update("last_login_at", now)

	cfg := config.Get()
	token, err := crypto.GenerateToken(user.ID, user.Email, string(user.Role), string(user.Citizenship), cfg.JWT.Secret, cfg.JWT.ExpireHours)
	if err != nil {
		response.ServerError(c, "Failed to issue session")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"role":        user.Role,
			"citizenship": user.Citizenship,
			"avatar":      user.Avatar,
		},
	})
}

// VerifyEmailRequest carries the emailed verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmail consumes a verification token and marks the address
// verified.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	email, err := h.tokens.ConsumeVerification(req.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	if err := model.DB.Model(&model.User{}).Where("email = ?", email).Update("email_verified_at", now).Error; err != nil {
		response.ServerError(c, "Failed to verify email")
		return
	}

	response.SuccessWithMessage(c, "Email verified, you can now log in", nil)
}

// ResetPasswordRequest asks for a reset link.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPassword issues a reset token. The response does not reveal
// whether the address exists.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var user model.User
	if err := model.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		token, terr := h.tokens.IssuePasswordReset(user.Email)
		if terr == nil {
			h.sendPasswordReset(user.Email, token.Token)
		}
	}

	response.SuccessWithMessage(c, "If that address is registered, a reset link has been sent", nil)
}

// NewPasswordRequest sets a password via a reset token.
type NewPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// NewPassword consumes a reset token and stores the new password. A
// tampered or expired token leaves the password untouched.
func (h *AuthHandler) NewPassword(c *gin.Context) {
	var req NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	email, err := h.tokens.ConsumePasswordReset(req.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var user model.User
	if err := model.DB.Where("email = ?", email).First(&user).Error; err != nil {
		response.NotFound(c, "Account not found")
		return
	}

	if err := user.SetPassword(req.Password); err != nil {
		response.ServerError(c, "Failed to secure password")
		return
	}

	if err := model.DB.Model(&user).Update("password", user.Password).Error; err != nil {
		response.ServerError(c, "Failed to update password")
		return
	}

	response.SuccessWithMessage(c, "Password updated, you can now log in", nil)
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var user model.User
	if err := model.DB.First(&user, "id = ?", userID).Error; err != nil {
		response.NotFound(c, "Account not found")
		return
	}

	response.Success(c, gin.H{
		"id":                 user.ID,
		"email":              user.Email,
		"name":               user.Name,
		"phone":              user.Phone,
		"avatar":             user.Avatar,
		"national_id":        user.NationalID,
		"role":               user.Role,
		"citizenship":        user.Citizenship,
		"email_verified":     user.EmailVerified(),
		"two_factor_enabled": user.TwoFactorEnabled,
		"last_login_at":      user.LastLoginAt,
		"created_at":         user.CreatedAt,
	})
}

// UpdateProfileRequest edits the caller's own account.
type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Avatar     string `json:"avatar"`
	NationalID string `json:"national_id"`
	TwoFactor  *bool  `json:"two_factor_enabled"`
}

// UpdateProfile applies partial edits to the caller's account.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", userID).Error; err != nil {
		response.NotFound(c, "Account not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.NationalID != "" {
		user.NationalID = req.NationalID
	}
	if req.TwoFactor != nil {
		user.TwoFactorEnabled = *req.TwoFactor
	}

	if err := model.DB.Save(&user).Error; err != nil {
		response.ServerError(c, "Failed to update profile")
		return
	}

	response.SuccessWithMessage(c, "Profile updated", nil)
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword verifies the old password before storing the new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", userID).Error; err != nil {
		response.NotFound(c, "Account not found")
		return
	}

	if !user.CheckPassword(req.OldPassword) {
		response.Error(c, 400, "Current password is incorrect")
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		response.ServerError(c, "Failed to secure password")
		return
	}

	if err := model.DB.Model(&user).Update("password", user.Password).Error; err != nil {
		response.ServerError(c, "Failed to update password")
		return
	}

	response.SuccessWithMessage(c, "Password changed", nil)
}

func (h *AuthHandler) sendVerification(email string) {
	token, err := h.tokens.IssueVerification(email)
	if err != nil {
		return
	}
	url := fmt.Sprintf("%s/verify-email?token=%s", config.Get().Server.BaseURL, token.Token)
	body := "<p>Confirm your email address to activate your training portal account.</p>"
	html, err := service.RenderEmail("Verify Your Email", body, url, "Verify Email")
	if err != nil {
		return
	}
	if err := h.mailer.SendEmail(email, "Verify your email address", html); err != nil {
		log.Printf("[auth] verification email to %s failed: %v", utils.MaskEmail(email), err)
	}
}

func (h *AuthHandler) sendTwoFactorCode(email, code string) {
	body := fmt.Sprintf("<p>Your login code is <strong>%s</strong>. It expires shortly.</p>", code)
	html, err := service.RenderEmail("Two-Factor Code", body, "", "")
	if err != nil {
		return
	}
	h.mailer.SendEmail(email, "Your login code", html)
}

func (h *AuthHandler) sendPasswordReset(email, token string) {
	url := fmt.Sprintf("%s/new-password?token=%s", config.Get().Server.BaseURL, token)
	body := "<p>A password reset was requested for your account. If this was not you, ignore this email.</p>"
	html, err := service.RenderEmail("Reset Your Password", body, url, "Reset Password")
	if err != nil {
		return
	}
	h.mailer.SendEmail(email, "Reset your password", html)
}
