package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/markoai/marko-backend/models"
)

type CharacterChatRepo struct {
	db *gorm.DB
}

func NewCharacterChatRepo(db *gorm.DB) *CharacterChatRepo {
	return &CharacterChatRepo{db}
}

func (r *CharacterChatRepo) Add(ctx context.Context, turns ...*models.CharacterChat) error {
	if len(turns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Character").Create(turns).Error
}

// FindConversation returns the last limit turns with a character, oldest first
func (r *CharacterChatRepo) FindConversation(ctx context.Context, characterID uint, conversationID string, limit int) ([]*models.CharacterChat, error) {
	var turns []*models.CharacterChat
	err := r.db.WithContext(ctx).
		Where("character_id = ? AND conversation_id = ?", characterID, conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	reverse(turns)
	return turns, nil
}
