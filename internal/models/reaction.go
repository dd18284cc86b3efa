package models

import (
	"time"
)

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Reaction is unique per (announcement, user): a user holds at most one
// reaction on an announcement, either a like or a dislike.
type Reaction struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	AnnouncementID uint         `gorm:"not null;uniqueIndex:idx_reaction_announcement_user" json:"announcement_id"`
	UserID         uint         `gorm:"not null;uniqueIndex:idx_reaction_announcement_user;index" json:"user_id"`
	Type           ReactionType `gorm:"size:10;not null" json:"type"`
	CreatedAt      time.Time    `json:"created_at"`
}
