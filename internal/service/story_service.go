package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/sushilghimire07/Social-Media-App/internal/audit"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/internal/events"
	"github.com/sushilghimire07/Social-Media-App/internal/media"
	"github.com/sushilghimire07/Social-Media-App/internal/repository"
	"github.com/sushilghimire07/Social-Media-App/pkg/log"
)

// storyServiceImpl implements StoryService.
type storyServiceImpl struct {
	stories     repository.StoryRepository
	users       repository.UserRepository
	follows     repository.FollowRepository
	connections repository.ConnectionRepository
	processor   *media.ImageProcessor
	producer    events.Producer
}

// NewStoryService creates a new story service.
func NewStoryService(
	stories repository.StoryRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	connections repository.ConnectionRepository,
	processor *media.ImageProcessor,
	producer events.Producer,
) StoryService {
	return &storyServiceImpl{
		stories:     stories,
		users:       users,
		follows:     follows,
		connections: connections,
		processor:   processor,
		producer:    producer,
	}
}

// Create stores the story and emits story.created so the worker can delete
// it once it expires.
func (s *storyServiceImpl) Create(ctx context.Context, userID string, req *domain.CreateStoryRequest, mediaFile *multipart.FileHeader) (*domain.Story, error) {
	l := log.Ctx(ctx)

	var mediaURL string
	switch req.MediaType {
	case domain.MediaTypeImage:
		if mediaFile == nil {
			return nil, ErrMissingMedia
		}
		url, err := s.processor.ProcessUpload(ctx, mediaFile, "stories", userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to store story image")
			return nil, err
		}
		mediaURL = url
	case domain.MediaTypeVideo:
		if mediaFile == nil {
			return nil, ErrMissingMedia
		}
		url, err := s.processor.StoreRaw(ctx, mediaFile, "stories", userID)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to store story video")
			return nil, err
		}
		mediaURL = url
	}

	story := &domain.Story{
		ID:              uuid.NewString(),
		UserID:          userID,
		Content:         req.Content,
		MediaURL:        mediaURL,
		MediaType:       req.MediaType,
		BackgroundColor: req.BackgroundColor,
	}

	if err := s.stories.Create(ctx, story); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to create story")
		return nil, err
	}

	if s.producer != nil {
		payload := events.StoryCreatedPayload{
			StoryID:   story.ID,
			UserID:    userID,
			CreatedAt: story.CreatedAt.Unix(),
		}
		if err := s.producer.Produce(ctx, events.TypeStoryCreated, story.ID, payload); err != nil {
			l.Error().Err(err).Str(log.FieldStoryID, story.ID).Msg("failed to emit story.created")
		}
	}

	audit.LogWithDetail(ctx, audit.ActionCreateStory, userID, story.ID, "story created")
	return story, nil
}

// List returns active stories from the user's network, newest first. Expired
// stories are filtered out even when the worker has not deleted them yet.
func (s *storyServiceImpl) List(ctx context.Context, userID string) ([]*domain.Story, error) {
	partnerIDs, err := s.connections.AcceptedPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{userID: {}}
	authorIDs := []string{userID}
	for _, id := range append(partnerIDs, followingIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		authorIDs = append(authorIDs, id)
	}

	cutoff := time.Now().Add(-domain.StoryTTL)
	stories, err := s.stories.ActiveByAuthors(ctx, authorIDs, cutoff)
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
	for _, st := range stories {
		st.User = byID[st.UserID]
	}
	return stories, nil
}

// Delete removes the story row and its media object.
func (s *storyServiceImpl) Delete(ctx context.Context, storyID string) error {
	l := log.Ctx(ctx)

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			// Already gone; the cron sweep and the delayed job can race.
			return nil
		}
		return err
	}

	if story.MediaURL != "" {
		if err := s.processor.DeleteByURL(ctx, story.MediaURL); err != nil {
			l.Warn().Err(err).Str(log.FieldStoryID, storyID).Msg("failed to delete story media")
		}
	}

	if err := s.stories.Delete(ctx, storyID); err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return nil
		}
		return err
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteStory, story.UserID, storyID, "story deleted")
	return nil
}

var _ StoryService = (*storyServiceImpl)(nil)
