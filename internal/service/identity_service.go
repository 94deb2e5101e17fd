package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sushilghimire07/Social-Media-App/internal/audit"
	"github.com/sushilghimire07/Social-Media-App/internal/cache"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// identityServiceImpl implements IdentityService. It runs in the worker and
// mirrors identity-provider lifecycle events into local user rows.
type identityServiceImpl struct {
	users repository.UserRepository
	posts repository.PostRepository
	cache cache.UserCache
}

// NewIdentityService creates a new identity sync service. userCache may be
// nil.
func NewIdentityService(users repository.UserRepository, posts repository.PostRepository, userCache cache.UserCache) IdentityService {
	return &identityServiceImpl{
		users: users,
		posts: posts,
		cache: userCache,
	}
}

// SyncUser upserts the user row for a user.created / user.updated event.
// New users get a username derived from the email local part; a taken
// username gets a numeric suffix.
func (s *identityServiceImpl) SyncUser(ctx context.Context, ev *domain.IdentityEvent) error {
	l := log.Ctx(ctx)

	fullName := strings.TrimSpace(ev.FirstName + " " + ev.LastName)

	existing, err := s.users.GetByID(ctx, ev.ID)
	if err == nil {
		existing.Email = ev.Email
		existing.FullName = fullName
		if ev.ProfilePicture != "" {
			existing.ProfilePicture = ev.ProfilePicture
		}
		if err := s.users.Update(ctx, existing); err != nil {
			l.Error().Err(err).Str(log.FieldUserID, ev.ID).Msg("failed to update synced user")
			return err
		}
		s.invalidate(ctx, existing.ID)
		audit.Log(ctx, audit.ActionSyncUser, ev.ID, "user synced")
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	username, err := s.availableUsername(ctx, ev.Email)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:             ev.ID,
		Email:          ev.Email,
		FullName:       fullName,
		Username:       username,
		Bio:            domain.DefaultBio,
		ProfilePicture: ev.ProfilePicture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, ev.ID).Msg("failed to create synced user")
		return err
	}

	audit.Log(ctx, audit.ActionSyncUser, ev.ID, "user created from identity event")
	return nil
}

// availableUsername derives a username from the email local part, appending
// a numeric suffix until it is free.
func (s *identityServiceImpl) availableUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}

	candidate := base
	for i := 0; ; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		_, err := s.users.GetByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// DeleteUser removes the user row and their posts for a user.deleted event.
func (s *identityServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	l := log.Ctx(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if err := s.posts.DeleteByAuthor(ctx, userID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to delete user posts")
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to delete user")
		return err
	}

	s.invalidate(ctx, userID)
	audit.LogWithDetail(ctx, audit.ActionDeleteUser, userID, user.Username, "user deleted from identity event")
	return nil
}

func (s *identityServiceImpl) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to invalidate user cache")
	}
}

var _ IdentityService = (*identityServiceImpl)(nil)
