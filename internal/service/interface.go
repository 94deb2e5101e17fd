package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrSelfConnection   = errors.New("cannot connect with yourself")
	ErrAlreadyConnected = errors.New("already connected with this user")
	ErrRequestPending   = errors.New("connection request pending")
	ErrNoPendingRequest = errors.New("no pending connection request from this user")
	ErrRateLimited      = errors.New("connection request limit reached, try again later")
	ErrSelfMessage      = errors.New("cannot message yourself")
	ErrEmptyPost        = errors.New("post needs text or at least one image")
	ErrTooManyImages    = errors.New("a post carries at most four images")
	ErrMissingMedia     = errors.New("media file is required for this story type")
)

// UserService covers profiles, discovery and the follow graph.
type UserService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest, profilePicture, coverPhoto *multipart.FileHeader) (*domain.User, error)
	Discover(ctx context.Context, userID, input string) ([]*domain.User, error)
	Follow(ctx context.Context, userID, targetID string) error
	Unfollow(ctx context.Context, userID, targetID string) error
	Profile(ctx context.Context, profileID string) (*domain.ProfileResponse, error)
	Connections(ctx context.Context, userID string) (*domain.ConnectionsResponse, error)
}

// ConnectionService covers connection requests and acceptance.
type ConnectionService interface {
	Request(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error)
	Accept(ctx context.Context, userID, fromUserID string) error
}

// PostService covers posts, the feed and likes.
type PostService interface {
	Create(ctx context.Context, userID string, req *domain.CreatePostRequest, images []*multipart.FileHeader) (*domain.Post, error)
	Feed(ctx context.Context, userID string) ([]*domain.Post, error)
	// Like toggles the requester's like and reports the resulting state.
	Like(ctx context.Context, userID, postID string) (bool, error)
}

// StoryService covers ephemeral stories.
type StoryService interface {
	Create(ctx context.Context, userID string, req *domain.CreateStoryRequest, media *multipart.FileHeader) (*domain.Story, error)
	List(ctx context.Context, userID string) ([]*domain.Story, error)
	// Delete removes a story and its media object. Used by the worker once
	// the story expires.
	Delete(ctx context.Context, storyID string) error
}

// MessageService covers direct messages and live delivery.
type MessageService interface {
	Send(ctx context.Context, fromUserID string, req *domain.SendMessageRequest, image *multipart.FileHeader) (*domain.Message, error)
	// Chat returns the conversation with partnerID and marks the partner's
	// messages as seen.
	Chat(ctx context.Context, userID, partnerID string) ([]*domain.Message, error)
	Recent(ctx context.Context, userID string) ([]*domain.RecentChat, error)
}

// IdentityService syncs identity-provider lifecycle events into user rows.
type IdentityService interface {
	SyncUser(ctx context.Context, ev *domain.IdentityEvent) error
	DeleteUser(ctx context.Context, userID string) error
}
