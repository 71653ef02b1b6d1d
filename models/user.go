package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is a staff account able to sign in to the admin area.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string     `json:"username" gorm:"type:text;not null;uniqueIndex"`
	Email        string     `json:"email" gorm:"type:text;not null;uniqueIndex"`
	DisplayName  string     `json:"displayName" gorm:"type:text"`
	PasswordHash string     `json:"-" gorm:"type:text;not null"`
	Role         string     `json:"role" gorm:"type:text;not null;default:editor"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}
