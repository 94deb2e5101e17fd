package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrAlreadyFollowing   = errors.New("already following")
	ErrFollowNotFound     = errors.New("follow relationship not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrStoryNotFound      = errors.New("story not found")
	ErrMessageNotFound    = errors.New("message not found")
)

// UserRepository provides access to user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	// Search matches the input case-insensitively against username, email,
	// full name and location, excluding excludeID.
	Search(ctx context.Context, input, excludeID string) ([]*domain.User, error)
}

// FollowRepository provides access to the follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	// FollowingIDs returns the ids the given user follows.
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	// FollowerIDs returns the ids following the given user.
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}

// ConnectionRepository provides access to connection edges.
type ConnectionRepository interface {
	Create(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error)
	GetByID(ctx context.Context, id uint) (*domain.Connection, error)
	// GetBetween returns the edge between the two users in either direction.
	GetBetween(ctx context.Context, userA, userB string) (*domain.Connection, error)
	// GetPendingFrom returns the pending edge fromUserID → toUserID.
	GetPendingFrom(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error)
	Accept(ctx context.Context, id uint) error
	// CountCreatedSince counts edges created by the sender after the cutoff.
	CountCreatedSince(ctx context.Context, fromUserID string, since time.Time) (int64, error)
	// AcceptedPartnerIDs returns ids connected to the user by an accepted
	// edge, regardless of direction.
	AcceptedPartnerIDs(ctx context.Context, userID string) ([]string, error)
	// PendingSenderIDs returns ids with a pending request towards the user.
	PendingSenderIDs(ctx context.Context, userID string) ([]string, error)
}

// PostRepository provides access to posts and likes.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	// Feed returns posts authored by any of authorIDs, newest first.
	Feed(ctx context.Context, authorIDs []string) ([]*domain.Post, error)
	ByAuthor(ctx context.Context, userID string) ([]*domain.Post, error)
	// ToggleLike flips the (postID, userID) like membership and reports
	// whether the post is liked after the call.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	LikeUserIDs(ctx context.Context, postID string) ([]string, error)
	DeleteByAuthor(ctx context.Context, userID string) error
}

// StoryRepository provides access to stories.
type StoryRepository interface {
	Create(ctx context.Context, story *domain.Story) error
	GetByID(ctx context.Context, id string) (*domain.Story, error)
	// ActiveByAuthors returns stories by the given authors created after the
	// cutoff, newest first.
	ActiveByAuthors(ctx context.Context, authorIDs []string, cutoff time.Time) ([]*domain.Story, error)
	Delete(ctx context.Context, id string) error
	// ExpiredIDs returns ids of stories created before the cutoff.
	ExpiredIDs(ctx context.Context, cutoff time.Time) ([]string, error)
}

// MessageRepository provides access to direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// Conversation returns both directions of the pair, oldest first.
	Conversation(ctx context.Context, userA, userB string) ([]*domain.Message, error)
	// MarkSeen flips unseen messages from fromUserID to toUserID to seen.
	MarkSeen(ctx context.Context, fromUserID, toUserID string) error
	// ByParticipant returns every message the user sent or received, newest
	// first.
	ByParticipant(ctx context.Context, userID string) ([]*domain.Message, error)
	// UnseenCounts returns, per sender, how many unseen messages the user has.
	UnseenCounts(ctx context.Context, toUserID string) (map[string]int, error)
	// UsersWithUnseen returns recipient ids that currently have unseen
	// messages. Used by the daily digest.
	UsersWithUnseen(ctx context.Context) ([]string, error)
}
