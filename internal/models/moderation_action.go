package models

import (
	"time"
)

type ModerationActionKind string

const (
	ActionBlockUser          ModerationActionKind = "block_user"
	ActionUnblockUser        ModerationActionKind = "unblock_user"
	ActionPromoteUser        ModerationActionKind = "promote_user"
	ActionDemoteUser         ModerationActionKind = "demote_user"
	ActionDeleteComment      ModerationActionKind = "delete_comment"
	ActionDeleteAnnouncement ModerationActionKind = "delete_announcement"
	ActionEditComment        ModerationActionKind = "edit_comment"
	ActionEditAnnouncement   ModerationActionKind = "edit_announcement"
	ActionUpdateReport       ModerationActionKind = "update_report"
)

// ModerationAction is an append-only audit row.
type ModerationAction struct {
	ID         uint                 `gorm:"primaryKey" json:"id"`
	AdminID    uint                 `gorm:"not null;index" json:"admin_id"`
	TargetType TargetType           `gorm:"size:20;not null" json:"target_type"`
	TargetID   uint                 `gorm:"not null" json:"target_id"`
	Action     ModerationActionKind `gorm:"size:30;not null;index" json:"action"`
	Reason     string               `gorm:"size:500" json:"reason"`
	CreatedAt  time.Time            `gorm:"index" json:"created_at"`
}
