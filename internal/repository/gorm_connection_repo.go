package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

// GormConnectionRepository implements ConnectionRepository using GORM.
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GORM-backed connection repository.
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// Create inserts a pending edge from fromUserID to toUserID.
func (r *GormConnectionRepository) Create(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error) {
	model := domain.ConnectionModel{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.ConnectionPending,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetByID returns the edge with the given id.
func (r *GormConnectionRepository) GetByID(ctx context.Context, id uint) (*domain.Connection, error) {
	var model domain.ConnectionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetBetween returns the edge between the two users in either direction.
func (r *GormConnectionRepository) GetBetween(ctx context.Context, userA, userB string) (*domain.Connection, error) {
	var model domain.ConnectionModel
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetPendingFrom returns the pending edge fromUserID → toUserID.
func (r *GormConnectionRepository) GetPendingFrom(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error) {
	var model domain.ConnectionModel
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?",
			fromUserID, toUserID, domain.ConnectionPending).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Accept flips a pending edge to accepted. The status guard keeps the only
// legal transition pending → accepted.
func (r *GormConnectionRepository) Accept(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&domain.ConnectionModel{}).
		Where("id = ? AND status = ?", id, domain.ConnectionPending).
		Update("status", domain.ConnectionAccepted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConnectionNotFound
	}
	return nil
}

// CountCreatedSince counts edges created by the sender after the cutoff.
func (r *GormConnectionRepository) CountCreatedSince(ctx context.Context, fromUserID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ConnectionModel{}).
		Where("from_user_id = ? AND created_at > ?", fromUserID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AcceptedPartnerIDs returns ids connected to the user by an accepted edge,
// regardless of direction.
func (r *GormConnectionRepository) AcceptedPartnerIDs(ctx context.Context, userID string) ([]string, error) {
	var models []domain.ConnectionModel
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? OR to_user_id = ?) AND status = ?",
			userID, userID, domain.ConnectionAccepted).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(models))
	for _, m := range models {
		if m.FromUserID == userID {
			ids = append(ids, m.ToUserID)
		} else {
			ids = append(ids, m.FromUserID)
		}
	}
	return ids, nil
}

// PendingSenderIDs returns ids with a pending request towards the user.
func (r *GormConnectionRepository) PendingSenderIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.ConnectionModel{}).
		Where("to_user_id = ? AND status = ?", userID, domain.ConnectionPending).
		Pluck("from_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure interface is satisfied at compile time.
var _ ConnectionRepository = (*GormConnectionRepository)(nil)
