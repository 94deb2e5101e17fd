package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

// GormStoryRepository implements StoryRepository using GORM.
type GormStoryRepository struct {
	db *gorm.DB
}

// NewGormStoryRepository creates a new GORM-backed story repository.
func NewGormStoryRepository(db *gorm.DB) *GormStoryRepository {
	return &GormStoryRepository{db: db}
}

// Create inserts a new story.
func (r *GormStoryRepository) Create(ctx context.Context, story *domain.Story) error {
	model := domain.StoryModel{
		ID:              story.ID,
		UserID:          story.UserID,
		Content:         story.Content,
		MediaURL:        story.MediaURL,
		MediaType:       story.MediaType,
		BackgroundColor: story.BackgroundColor,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	story.CreatedAt = model.CreatedAt
	return nil
}

// GetByID returns the story with the given id.
func (r *GormStoryRepository) GetByID(ctx context.Context, id string) (*domain.Story, error) {
	var model domain.StoryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ActiveByAuthors returns stories by the given authors created after the
// cutoff, newest first.
func (r *GormStoryRepository) ActiveByAuthors(ctx context.Context, authorIDs []string, cutoff time.Time) ([]*domain.Story, error) {
	if len(authorIDs) == 0 {
		return []*domain.Story{}, nil
	}

	var models []domain.StoryModel
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND created_at > ?", authorIDs, cutoff).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	stories := make([]*domain.Story, 0, len(models))
	for i := range models {
		stories = append(stories, models[i].ToDomain())
	}
	return stories, nil
}

// Delete removes a story.
func (r *GormStoryRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.StoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStoryNotFound
	}
	return nil
}

// ExpiredIDs returns ids of stories created before the cutoff.
func (r *GormStoryRepository) ExpiredIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.StoryModel{}).
		Where("created_at <= ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure interface is satisfied at compile time.
var _ StoryRepository = (*GormStoryRepository)(nil)
