package models

import "time"

const (
	ToolChat      = "chat"
	ToolArticle   = "article"
	ToolImage     = "image"
	ToolCaption   = "caption"
	ToolTranslate = "translate"

	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one logged turn of a Gemini tool conversation.
type ChatMessage struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID string    `json:"conversationId" gorm:"type:varchar(36);not null;index"`
	UserID         *uint     `json:"userId,omitempty" gorm:"index"`
	Tool           string    `json:"tool" gorm:"type:text;not null;default:chat;index"`
	Role           string    `json:"role" gorm:"type:text;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
}
