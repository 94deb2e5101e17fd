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

// CreateStory creates a 24-hour story from a multipart form.
func (h *Handler) CreateStory(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.CreateStoryRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create story request")
		response.BadRequest(c, err.Error())
		return
	}

	media, _ := c.FormFile("media")
	if media != nil && media.Size > domain.MaxStoryMediaSize {
		response.BadRequest(c, "story media exceeds the 50MB limit")
		return
	}

	story, err := h.storyService.Create(ctx, userID, &req, media)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingMedia):
			response.BadRequest(c, "media file is required for image and video stories")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("create story failed")
			response.InternalError(c, "failed to create story")
		}
		return
	}

	response.Created(c, story)
}

// GetStories returns active stories from the requester's network.
func (h *Handler) GetStories(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	stories, err := h.storyService.List(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get stories failed")
		response.InternalError(c, "failed to get stories")
		return
	}

	response.Success(c, stories)
}
