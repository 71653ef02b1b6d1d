package models

import "time"

type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	PostCount int64 `json:"postCount" gorm:"-"`
}

// PostTag links a blog post to a tag.
type PostTag struct {
	BlogPostID uint      `gorm:"primaryKey"`
	TagID      uint      `gorm:"primaryKey;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (PostTag) TableName() string {
	return "post_tags"
}
