package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/sushilghimire07/Social-Media-App/internal/audit"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

const maxPostImages = 4

// postServiceImpl implements PostService.
type postServiceImpl struct {
	posts       repository.PostRepository
	users       repository.UserRepository
	follows     repository.FollowRepository
	connections repository.ConnectionRepository
	processor   *media.ImageProcessor
	feedGroup   singleflight.Group
}

// NewPostService creates a new post service.
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	connections repository.ConnectionRepository,
	processor *media.ImageProcessor,
) PostService {
	return &postServiceImpl{
		posts:       posts,
		users:       users,
		follows:     follows,
		connections: connections,
		processor:   processor,
	}
}

// Create stores the uploaded images and the post row. The post type is
// derived from what the post actually carries, whatever the client claims.
func (s *postServiceImpl) Create(ctx context.Context, userID string, req *domain.CreatePostRequest, images []*multipart.FileHeader) (*domain.Post, error) {
	l := log.Ctx(ctx)

	if req.Content == "" && len(images) == 0 {
		return nil, ErrEmptyPost
	}
	if len(images) > maxPostImages {
		return nil, ErrTooManyImages
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.processor.ProcessUpload(ctx, img, "posts", userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to store post image")
			return nil, err
		}
		urls = append(urls, url)
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   req.Content,
		ImageURLs: urls,
		PostType:  domain.DerivePostType(req.Content, len(urls)),
		Likes:     []string{},
	}

	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to create post")
		return nil, err
	}

	audit.LogWithDetail(ctx, audit.ActionCreatePost, userID, post.ID, "post created")
	return post, nil
}

// feedAuthorIDs is the author set of a user's feed: the user, accepted
// connections and everyone they follow.
func (s *postServiceImpl) feedAuthorIDs(ctx context.Context, userID string) ([]string, error) {
	partnerIDs, err := s.connections.AcceptedPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{userID: {}}
	ids := []string{userID}
	for _, id := range append(partnerIDs, followingIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// Feed returns posts by the feed author set, newest first, with authors and
// likes hydrated. Concurrent identical requests share one fetch.
func (s *postServiceImpl) Feed(ctx context.Context, userID string) ([]*domain.Post, error) {
	v, err, _ := s.feedGroup.Do(userID, func() (interface{}, error) {
		return s.loadFeed(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Post), nil
}

func (s *postServiceImpl) loadFeed(ctx context.Context, userID string) ([]*domain.Post, error) {
	authorIDs, err := s.feedAuthorIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.Feed(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	for _, p := range posts {
		p.User = byID[p.UserID]
		likes, err := s.posts.LikeUserIDs(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Likes = likes
		p.LikesCount = len(likes)
	}
	return posts, nil
}

// Like toggles the requester's like on a post.
func (s *postServiceImpl) Like(ctx context.Context, userID, postID string) (bool, error) {
	liked, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return false, ErrPostNotFound
		}
		return false, err
	}

	audit.LogWithDetail(ctx, audit.ActionLikePost, userID, postID, "post like toggled")
	return liked, nil
}

var _ PostService = (*postServiceImpl)(nil)
