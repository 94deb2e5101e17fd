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

// SendMessage sends a direct message from a multipart form with an optional
// image.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid send message request")
		response.BadRequest(c, err.Error())
		return
	}

	image, _ := c.FormFile("image")

	msg, err := h.messageService.Send(ctx, userID, &req, image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfMessage):
			response.BadRequest(c, "you cannot message yourself")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "recipient not found")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("send message failed")
			response.InternalError(c, "failed to send message")
		}
		return
	}

	response.Created(c, msg)
}

// GetChat returns the conversation with one partner and marks their messages
// as seen.
func (h *Handler) GetChat(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid chat request")
		response.BadRequest(c, err.Error())
		return
	}

	msgs, err := h.messageService.Chat(ctx, userID, req.ToUserID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get chat failed")
		response.InternalError(c, "failed to get chat")
		return
	}

	response.Success(c, msgs)
}

// GetRecentChats returns the latest message per distinct partner with
// unseen counts.
func (h *Handler) GetRecentChats(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	chats, err := h.messageService.Recent(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get recent chats failed")
		response.InternalError(c, "failed to get recent chats")
		return
	}

	response.Success(c, chats)
}
