package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
	"github.com/sushilghimire07/Social-Media-App/pkg/database"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a new post.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	model := domain.PostModel{
		ID:        post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		ImageURLs: database.StringArray(post.ImageURLs),
		PostType:  post.PostType,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	post.CreatedAt = model.CreatedAt
	return nil
}

// GetByID returns the post with the given id.
func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var model domain.PostModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Feed returns posts authored by any of authorIDs, newest first.
func (r *GormPostRepository) Feed(ctx context.Context, authorIDs []string) ([]*domain.Post, error) {
	if len(authorIDs) == 0 {
		return []*domain.Post{}, nil
	}

	var models []domain.PostModel
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, nil
}

// ByAuthor returns all posts of one author, newest first.
func (r *GormPostRepository) ByAuthor(ctx context.Context, userID string) ([]*domain.Post, error) {
	var models []domain.PostModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToDomain())
	}
	return posts, nil
}

// ToggleLike flips the (postID, userID) like membership inside a transaction
// and reports whether the post is liked after the call. Delete-first keeps
// the toggle idempotent: a second identical request undoes the first.
func (r *GormPostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.PostModel{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}

		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&domain.PostLikeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			// Was liked; toggle removed it.
			return nil
		}

		like := domain.PostLikeModel{PostID: postID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			if isUniqueViolation(err) {
				// Concurrent like won the race; treat as liked.
				liked = true
				return nil
			}
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// LikeUserIDs returns the ids of users who like the post.
func (r *GormPostRepository) LikeUserIDs(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.PostLikeModel{}).
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteByAuthor removes all posts and likes of one author. Used when an
// account-deletion event arrives from the identity provider.
func (r *GormPostRepository) DeleteByAuthor(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&domain.PostModel{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("post_id IN ?", ids).Delete(&domain.PostLikeModel{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("user_id = ?", userID).Delete(&domain.PostModel{}).Error
	})
}

// Ensure interface is satisfied at compile time.
var _ PostRepository = (*GormPostRepository)(nil)
