package handler

import (
	"errors"
	"strconv"

	"training-portal/internal/middleware"
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// currentActor builds the resolved caller identity from the session
// middleware. Lifecycle functions only ever see this value.
func currentActor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:    middleware.GetUserID(c),
		Email: middleware.GetUserEmail(c),
		Role:  model.UserRole(middleware.GetUserRole(c)),
	}
}

// respondServiceError maps lifecycle errors onto the response envelope.
// Unknown errors become a generic server error; the detail stays in the
// server logs.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUnknownInvoice):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotAuthorized),
		errors.Is(err, service.ErrInviteNotAuthorized),
		errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrEmailMismatch),
		errors.Is(err, service.ErrExpired),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrInvitePending),
		errors.Is(err, service.ErrRosterMismatch),
		errors.Is(err, service.ErrSessionMode),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrTerminalState),
		errors.Is(err, service.ErrNoCurrency),
		errors.Is(err, service.ErrNoFee),
		errors.Is(err, service.ErrNoApplicationOwner),
		errors.Is(err, service.ErrNoEvidence),
		errors.Is(err, service.ErrInvoiceClosed),
		errors.Is(err, model.ErrNoCapacity):
		response.Error(c, 400, err.Error())
	default:
		response.ServerError(c, "Something went wrong, please try again later")
	}
}

// parsePage reads page/page_size query values with sane bounds.
func parsePage(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return
}
