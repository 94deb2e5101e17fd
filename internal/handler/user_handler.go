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

// GetMe returns the current user's profile.
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.userService.Me(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("get me failed")
		response.InternalError(c, "failed to get user")
		return
	}

	response.Success(c, user)
}

// UpdateMe updates the current user's profile from a multipart form.
func (h *Handler) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		l.Warn().Err(err).Msg("invalid update profile request")
		response.BadRequest(c, err.Error())
		return
	}

	// Optional image uploads; absent files leave current images in place.
	profilePicture, _ := c.FormFile("profile_picture")
	coverPhoto, _ := c.FormFile("cover_photo")

	user, err := h.userService.UpdateProfile(ctx, userID, &req, profilePicture, coverPhoto)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("update profile failed")
		response.InternalError(c, "failed to update profile")
		return
	}

	response.Success(c, user)
}

// Discover searches people by free text.
func (h *Handler) Discover(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid discover request")
		response.BadRequest(c, err.Error())
		return
	}

	users, err := h.userService.Discover(ctx, userID, req.Input)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("discover failed")
		response.InternalError(c, "failed to search users")
		return
	}

	response.Success(c, users)
}

// Follow follows another user.
func (h *Handler) Follow(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.TargetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid follow request")
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.Follow(ctx, userID, req.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			response.BadRequest(c, "you cannot follow yourself")
		case errors.Is(err, service.ErrAlreadyFollowing):
			response.Refused(c, "you are already following this user")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("follow failed")
			response.InternalError(c, "failed to follow user")
		}
		return
	}

	response.SuccessMessage(c, "now following this user", nil)
}

// Unfollow unfollows another user.
func (h *Handler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req domain.TargetUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid unfollow request")
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.userService.Unfollow(ctx, userID, req.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFollowing):
			response.Refused(c, "you are not following this user")
		default:
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("unfollow failed")
			response.InternalError(c, "failed to unfollow user")
		}
		return
	}

	response.SuccessMessage(c, "no longer following this user", nil)
}

// GetProfile returns another user's public profile with their posts.
func (h *Handler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid profile request")
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.userService.Profile(ctx, req.ProfileID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		l.Error().Err(err).Str(log.FieldTargetID, req.ProfileID).Msg("get profile failed")
		response.InternalError(c, "failed to get profile")
		return
	}

	response.Success(c, profile)
}
