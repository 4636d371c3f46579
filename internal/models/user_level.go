package models

import (
	"gorm.io/gorm"
)

// DefaultRank is the rank assigned when a level record is first created.
const DefaultRank = "炼气期 - 1层"

// UserLevel holds a user's cumulative experience and cultivation rank.
// Exactly one record exists per owner; it is created lazily on the first
// completed task.
type UserLevel struct {
	gorm.Model
	OwnerID         uint   `gorm:"uniqueIndex;not null" json:"ownerId"`
	TotalExperience int64  `gorm:"not null;default:0" json:"totalExperience"`
	CultivationRank string `gorm:"not null" json:"cultivationRank"`
}
