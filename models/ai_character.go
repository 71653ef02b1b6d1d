package models

import (
	"time"

	"gorm.io/datatypes"
)

// AICharacter defines a persona users can chat with.
type AICharacter struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string         `json:"name" gorm:"type:text;not null"`
	Slug        string         `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Tagline     string         `json:"tagline" gorm:"type:text"`
	Description string         `json:"description" gorm:"type:text"`
	Persona     string         `json:"persona" gorm:"type:text;not null"`
	Greeting    string         `json:"greeting" gorm:"type:text"`
	AvatarURL   *string        `json:"avatarUrl,omitempty" gorm:"type:text"`
	Traits      datatypes.JSON `json:"traits,omitempty"`
	IsActive    bool           `json:"isActive" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (AICharacter) TableName() string {
	return "ai_characters"
}

// CharacterChat is one turn of a conversation with an AI character.
type CharacterChat struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CharacterID    uint      `json:"characterId" gorm:"not null;index:idx_character_chat_conversation"`
	ConversationID string    `json:"conversationId" gorm:"type:varchar(36);not null;index:idx_character_chat_conversation"`
	Role           string    `json:"role" gorm:"type:text;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`

	Character *AICharacter `json:"-" gorm:"foreignKey:CharacterID;references:ID;constraint:OnDelete:CASCADE"`
}
