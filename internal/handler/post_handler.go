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

// CreatePost creates a post from a multipart form with up to four images.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create post request")
		response.BadRequest(c, err.Error())
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		l.Warn().Err(err).Msg("invalid multipart form")
		response.BadRequest(c, "invalid multipart form")
		return
	}
	images := form.File["images"]

	post, err := h.postService.Create(ctx, userID, &req, images)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyPost):
			response.BadRequest(c, "post needs text or at least one image")
		case errors.Is(err, service.ErrTooManyImages):
			response.BadRequest(c, "a post carries at most four images")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("create post failed")
			response.InternalError(c, "failed to create post")
		}
		return
	}

	response.Created(c, post)
}

// GetFeed returns the requester's feed.
func (h *Handler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	posts, err := h.postService.Feed(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get feed failed")
		response.InternalError(c, "failed to get feed")
		return
	}

	response.Success(c, posts)
}

// LikePost toggles the requester's like on a post.
func (h *Handler) LikePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.LikePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid like request")
		response.BadRequest(c, err.Error())
		return
	}

	liked, err := h.postService.Like(ctx, userID, req.PostID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, userID).Str(log.FieldPostID, req.PostID).Msg("like post failed")
		response.InternalError(c, "failed to like post")
		return
	}

	if liked {
		response.SuccessMessage(c, "post liked", gin.H{"liked": true})
		return
	}
	response.SuccessMessage(c, "post unliked", gin.H{"liked": false})
}
