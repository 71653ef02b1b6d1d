package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/markoai/marko-backend/models"
)

type ChatLogRepo struct {
	db *gorm.DB
}

func NewChatLogRepo(db *gorm.DB) *ChatLogRepo {
	return &ChatLogRepo{db}
}

// Add inserts the messages in one statement
func (r *ChatLogRepo) Add(ctx context.Context, messages ...*models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(messages).Error
}

// FindConversation returns the last limit turns of a chat conversation, oldest first
func (r *ChatLogRepo) FindConversation(ctx context.Context, conversationID string, limit int) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND tool = ?", conversationID, models.ToolChat).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	reverse(messages)
	return messages, nil
}

// CountSince returns the number of logged messages per tool created at or after since
func (r *ChatLogRepo) CountSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	var rows []struct {
		Tool string
		N    int64
	}
	err := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Select("tool, COUNT(*) AS n").
		Where("created_at >= ? AND role = ?", since, models.RoleUser).
		Group("tool").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Tool] = row.N
	}
	return counts, nil
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
