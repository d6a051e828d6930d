// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMemory
// model, which behaves as a bounded cache keyed by reply message id.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tatowo/dishweek-backend/internal/domain"
)

// CreateChatMemory records the text of a sent bot reply under its message id.
// MessageID is the primary key, so recording the same reply twice fails with
// the underlying constraint error; replies get fresh ids, so in practice
// this does not happen.
func CreateChatMemory(ctx context.Context, db *gorm.DB, messageID, userID, botResponse string, createdAt time.Time) error {
	m := &domain.ChatMemory{
		MessageID:   messageID,
		UserID:      userID,
		BotResponse: botResponse,
		CreatedAt:   createdAt,
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetChatMemory returns the stored reply text for messageID, or ErrNotFound.
func GetChatMemory(ctx context.Context, db *gorm.DB, messageID string) (*domain.ChatMemory, error) {
	var m domain.ChatMemory
	err := db.WithContext(ctx).
		Where("message_id = ?", messageID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// PruneChatMemory deletes the oldest rows until at most keep remain. It is
// called after every insert so the table stays a fixed-size ring rather than
// an ever-growing log. A keep <= 0 disables pruning.
func PruneChatMemory(ctx context.Context, db *gorm.DB, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Exec(`
		DELETE FROM chatbot_memory
		WHERE message_id NOT IN (
			SELECT message_id FROM chatbot_memory
			ORDER BY created_at DESC, message_id DESC
			LIMIT ?
		)`, keep)
	return res.RowsAffected, res.Error
}

// CountChatMemory returns the number of cached replies.
func CountChatMemory(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.ChatMemory{}).Count(&total).Error
	return total, err
}
