package models

import (
	"gorm.io/gorm"
)

// User represents a registered account in the system.
type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Nickname     string `json:"nickname"`
	IsGuest      bool   `gorm:"not null;default:false" json:"isGuest"`
}
