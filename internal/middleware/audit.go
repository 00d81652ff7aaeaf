package middleware

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	"training-portal/internal/model"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware persists every write operation to the audit log.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health") || strings.Contains(path, "/statistics/") {
			c.Next()
			return
		}

		method := c.Request.Method
		if method == "GET" {
			c.Next()
			return
		}

		startTime := time.Now()

		var requestBody string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			requestBody = string(bodyBytes)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

			if strings.Contains(requestBody, "password") {
				requestBody = maskSensitiveData(requestBody)
			}
		}

		c.Next()

		duration := time.Since(startTime).Milliseconds()

		userID, _ := c.Get("user_id")
		userEmail, _ := c.Get("email")

		action, resource, resourceID := parseActionFromPath(method, path)

		entry := model.AuditLog{
			UserID:       toString(userID),
			UserEmail:    toString(userEmail),
			Action:       action,
			Resource:     resource,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			RequestBody:  truncateString(requestBody, 2000),
			ResponseCode: c.Writer.Status(),
			Duration:     duration,
		}

		// Persisted off the request path.
		go func() {
			model.DB.Create(&entry)
		}()
	}
}

// parseActionFromPath maps a method and path to audit classification.
func parseActionFromPath(method, path string) (action, resource, resourceID string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	for _, part := range parts {
		switch part {
		case "organizations":
			resource = model.ResourceOrganization
		case "invites":
			resource = model.ResourceInvite
		case "programs":
			resource = model.ResourceProgram
		case "sessions":
			resource = model.ResourceSession
		case "applications":
			resource = model.ResourceApplication
		case "payments":
			resource = model.ResourcePayment
		case "completions":
			resource = model.ResourceCompletion
		case "auth", "users":
			resource = model.ResourceUser
		}
	}

	switch method {
	case "POST":
		switch {
		case strings.Contains(path, "/login"):
			action = model.ActionLogin
		case strings.Contains(path, "/approve"):
			action = model.ActionApprove
		case strings.Contains(path, "/reject"):
			action = model.ActionReject
		case strings.Contains(path, "/revoke"):
			action = model.ActionRevoke
		case strings.Contains(path, "/export"):
			action = model.ActionExport
		default:
			action = model.ActionCreate
		}
	case "PUT":
		action = model.ActionUpdate
	case "DELETE":
		action = model.ActionDelete
	default:
		action = method
	}

	for _, part := range parts {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			resourceID = part
			break
		}
	}

	return
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var passwordFieldPattern = regexp.MustCompile(`"(password|old_password|new_password)"\s*:\s*"[^"]*"`)

func maskSensitiveData(data string) string {
	return passwordFieldPattern.ReplaceAllString(data, `"$1":"***"`)
}
