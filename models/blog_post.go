package models

import (
	"strings"
	"time"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPending   = "pending"
	PostStatusPublished = "published"
	PostStatusRejected  = "rejected"
)

const wordsPerMinute = 200

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID             uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string     `json:"title" gorm:"type:text;not null"`
	Slug           string     `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Excerpt        string     `json:"excerpt" gorm:"type:text"`
	Content        string     `json:"content" gorm:"type:text;not null"`
	CoverImageURL  *string    `json:"coverImageUrl,omitempty" gorm:"type:text"`
	Status         string     `json:"status" gorm:"type:text;not null;default:draft;index"`
	AuthorID       uint       `json:"authorId" gorm:"not null;index"`
	CategoryID     *uint      `json:"categoryId,omitempty" gorm:"index"`
	ModerationNote *string    `json:"moderationNote,omitempty" gorm:"type:text"`
	ViewCount      int        `json:"viewCount" gorm:"not null;default:0"`
	ReadingMinutes int        `json:"readingMinutes" gorm:"not null;default:1"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty" gorm:"index"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
	Tags     []Tag     `json:"tags" gorm:"many2many:post_tags;joinForeignKey:BlogPostID;joinReferences:TagID"`
}

func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusPending, PostStatusPublished, PostStatusRejected:
		return true
	}
	return false
}

// ReadingMinutesFor estimates reading time at 200 words per minute, never less than one.
func ReadingMinutesFor(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
