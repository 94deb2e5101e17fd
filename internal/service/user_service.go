package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/sushilghimire07/Social-Media-App/internal/audit"
	"github.com/sushilghimire07/Social-Media-App/internal/cache"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// userServiceImpl implements UserService.
type userServiceImpl struct {
	users       repository.UserRepository
	follows     repository.FollowRepository
	connections repository.ConnectionRepository
	posts       repository.PostRepository
	processor   *media.ImageProcessor
	cache       cache.UserCache
	cacheTTL    time.Duration
}

// NewUserService creates a new user service. userCache may be nil, in which
// case every read goes to the database.
func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	connections repository.ConnectionRepository,
	posts repository.PostRepository,
	processor *media.ImageProcessor,
	userCache cache.UserCache,
	cacheTTL time.Duration,
) UserService {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &userServiceImpl{
		users:       users,
		follows:     follows,
		connections: connections,
		posts:       posts,
		processor:   processor,
		cache:       userCache,
		cacheTTL:    cacheTTL,
	}
}

// Me returns the requester's own profile.
func (s *userServiceImpl) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.getUser(ctx, userID)
}

// getUser reads through the profile cache.
func (s *userServiceImpl) getUser(ctx context.Context, userID string) (*domain.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err == nil {
			return cached, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user, s.cacheTTL); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to cache user")
		}
	}

	return user, nil
}

func (s *userServiceImpl) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to invalidate user cache")
	}
}

// UpdateProfile applies the form fields and optional image uploads. A taken
// username keeps the previous one instead of failing the whole edit.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest, profilePicture, coverPhoto *multipart.FileHeader) (*domain.User, error) {
	l := log.Ctx(ctx)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	oldUsername := user.Username
	if req.Username != "" && req.Username != user.Username {
		if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
			// Taken. Keep the current username, as the original product does.
			l.Debug().Str(log.FieldUserID, userID).Str("username", req.Username).Msg("username taken, keeping current")
		} else if errors.Is(err, repository.ErrUserNotFound) {
			user.Username = req.Username
		} else {
			return nil, err
		}
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Location != "" {
		user.Location = req.Location
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}

	if profilePicture != nil {
		url, err := s.processor.ProcessUpload(ctx, profilePicture, "profiles", userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to store profile picture")
			return nil, err
		}
		user.ProfilePicture = url
	}
	if coverPhoto != nil {
		url, err := s.processor.ProcessUpload(ctx, coverPhoto, "covers", userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to store cover photo")
			return nil, err
		}
		user.CoverPhoto = url
	}

	err = s.users.Update(ctx, user)
	if errors.Is(err, repository.ErrUsernameExists) && user.Username != oldUsername {
		// Lost the name to a concurrent write between the availability
		// check and the update. Keep the current username, same as when
		// the check itself finds it taken.
		l.Debug().Str(log.FieldUserID, userID).Str("username", user.Username).Msg("username taken, keeping current")
		user.Username = oldUsername
		err = s.users.Update(ctx, user)
	}
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to update user")
		return nil, err
	}

	s.invalidate(ctx, userID)

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")
	return user, nil
}

// Discover searches people by free text, excluding the requester.
func (s *userServiceImpl) Discover(ctx context.Context, userID, input string) ([]*domain.User, error) {
	return s.users.Search(ctx, input, userID)
}

// Follow creates the follow edge userID → targetID.
func (s *userServiceImpl) Follow(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfFollow
	}

	if _, err := s.getUser(ctx, targetID); err != nil {
		return err
	}

	if err := s.follows.Follow(ctx, userID, targetID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return ErrAlreadyFollowing
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionFollow, userID, targetID, "user followed")
	return nil
}

// Unfollow removes the follow edge userID → targetID.
func (s *userServiceImpl) Unfollow(ctx context.Context, userID, targetID string) error {
	if err := s.follows.Unfollow(ctx, userID, targetID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return ErrNotFollowing
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionUnfollow, userID, targetID, "user unfollowed")
	return nil
}

// Profile returns a public profile together with that user's posts.
func (s *userServiceImpl) Profile(ctx context.Context, profileID string) (*domain.ProfileResponse, error) {
	user, err := s.getUser(ctx, profileID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ByAuthor(ctx, profileID)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.User = user
		likes, err := s.posts.LikeUserIDs(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Likes = likes
		p.LikesCount = len(likes)
	}

	return &domain.ProfileResponse{Profile: user, Posts: posts}, nil
}

// Connections aggregates connections, followers, following and pending
// incoming requests.
func (s *userServiceImpl) Connections(ctx context.Context, userID string) (*domain.ConnectionsResponse, error) {
	partnerIDs, err := s.connections.AcceptedPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	followerIDs, err := s.follows.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	pendingIDs, err := s.connections.PendingSenderIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &domain.ConnectionsResponse{}
	if resp.Connections, err = s.users.GetByIDs(ctx, partnerIDs); err != nil {
		return nil, err
	}
	if resp.Followers, err = s.users.GetByIDs(ctx, followerIDs); err != nil {
		return nil, err
	}
	if resp.Following, err = s.users.GetByIDs(ctx, followingIDs); err != nil {
		return nil, err
	}
	if resp.Pending, err = s.users.GetByIDs(ctx, pendingIDs); err != nil {
		return nil, err
	}
	return resp, nil
}

var _ UserService = (*userServiceImpl)(nil)
