package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-backed message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts a new message.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	model := domain.MessageModel{
		ID:          msg.ID,
		FromUserID:  msg.FromUserID,
		ToUserID:    msg.ToUserID,
		Text:        msg.Text,
		MediaURL:    msg.MediaURL,
		MessageType: msg.MessageType,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	msg.CreatedAt = model.CreatedAt
	return nil
}

// Conversation returns both directions of the pair, oldest first.
func (r *GormMessageRepository) Conversation(ctx context.Context, userA, userB string) ([]*domain.Message, error) {
	var models []domain.MessageModel
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	msgs := make([]*domain.Message, 0, len(models))
	for i := range models {
		msgs = append(msgs, models[i].ToDomain())
	}
	return msgs, nil
}

// MarkSeen flips unseen messages from fromUserID to toUserID to seen.
func (r *GormMessageRepository) MarkSeen(ctx context.Context, fromUserID, toUserID string) error {
	return r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("from_user_id = ? AND to_user_id = ? AND seen = ?", fromUserID, toUserID, false).
		Update("seen", true).Error
}

// ByParticipant returns every message the user sent or received, newest first.
func (r *GormMessageRepository) ByParticipant(ctx context.Context, userID string) ([]*domain.Message, error) {
	var models []domain.MessageModel
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	msgs := make([]*domain.Message, 0, len(models))
	for i := range models {
		msgs = append(msgs, models[i].ToDomain())
	}
	return msgs, nil
}

// UnseenCounts returns, per sender, how many unseen messages the user has.
func (r *GormMessageRepository) UnseenCounts(ctx context.Context, toUserID string) (map[string]int, error) {
	type row struct {
		FromUserID string
		N          int
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Select("from_user_id, COUNT(*) as n").
		Where("to_user_id = ? AND seen = ?", toUserID, false).
		Group("from_user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.FromUserID] = r.N
	}
	return counts, nil
}

// UsersWithUnseen returns recipient ids that currently have unseen messages.
func (r *GormMessageRepository) UsersWithUnseen(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("seen = ?", false).
		Distinct().
		Pluck("to_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure interface is satisfied at compile time.
var _ MessageRepository = (*GormMessageRepository)(nil)
