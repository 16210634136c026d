package model

import (
	"time"
)

type UserRole string

const (
	Student  UserRole = "student"
	Guardian UserRole = "guardian"
	Admin    UserRole = "admin"
)

// User mirrors the identity issued by the external auth collaborator; this
// service only reads it for ownership checks and leaderboard display.
// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"name"`
	Email    string    `gorm:"size:100;unique;not null" json:"email"`
	Role     UserRole  `gorm:"type:enum('student','guardian','admin');default:'student'" json:"role"`
	Avatar   string    `gorm:"size:255" json:"avatar"`
	Disabled bool      `gorm:"default:false" json:"disabled"`
	LastSeen time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
