package models

import (
	"time"
)

type Comment struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	AnnouncementID uint         `gorm:"not null;index" json:"announcement_id"`
	Announcement   Announcement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID         uint         `gorm:"not null;index" json:"user_id"`
	User           User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID       *uint        `gorm:"index" json:"parent_id"` // nil for top-level comments
	Parent         *Comment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content        string       `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	ReplyCount int64 `gorm:"-" json:"reply_count"`
}

func (c *Comment) OwnerID() uint {
	return c.UserID
}

func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
