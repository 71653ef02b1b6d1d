package models

import "time"

// Session is a server-side login session referenced by the session cookie.
type Session struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	UserAgent string    `json:"userAgent" gorm:"type:text"`
	IPAddress string    `json:"ipAddress" gorm:"type:text"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
