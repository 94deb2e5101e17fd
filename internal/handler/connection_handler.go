package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
	"github.com/sushilghimire07/Social-Media-App/pkg/middleware"
	"github.com/sushilghimire07/Social-Media-App/pkg/response"
)

// SendConnectionRequest sends a connection request to another user.
func (h *Handler) SendConnectionRequest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.TargetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid connection request")
		response.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connectionService.Request(ctx, userID, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfConnection):
			response.BadRequest(c, "you cannot connect with yourself")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, service.ErrRateLimited):
			response.TooManyRequests(c, "you have sent more than 20 connection requests in the last 24 hours")
		case errors.Is(err, service.ErrRequestPending):
			response.Refused(c, "connection request pending")
		case errors.Is(err, service.ErrAlreadyConnected):
			response.Refused(c, "you are already connected with this user")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("connection request failed")
			response.InternalError(c, "failed to send connection request")
		}
		return
	}

	response.SuccessMessage(c, "connection request sent successfully", conn)
}

// AcceptConnectionRequest accepts a pending connection request.
func (h *Handler) AcceptConnectionRequest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.TargetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid accept request")
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.connectionService.Accept(ctx, userID, req.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingRequest):
			response.NotFound(c, "no pending connection request from this user")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("accept connection failed")
			response.InternalError(c, "failed to accept connection request")
		}
		return
	}

	response.SuccessMessage(c, "connection accepted successfully", nil)
}

// GetConnections returns the requester's relationship sets.
func (h *Handler) GetConnections(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	resp, err := h.userService.Connections(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get connections failed")
		response.InternalError(c, "failed to get connections")
		return
	}

	response.Success(c, resp)
}
