package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

// ErrCacheMiss is returned by Get when the user is not cached.
var ErrCacheMiss = errors.New("cache miss")

// UserCache caches user profiles by id. Profiles sit on every hot read path
// (feed hydration, stories, recent chats), so a short TTL in front of the
// database pays for itself quickly.
type UserCache interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
	Close() error
}
