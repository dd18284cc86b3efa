package models

import (
	"time"
)

type AnnouncementStatus string

const (
	AnnouncementPublished AnnouncementStatus = "published"
	AnnouncementArchived  AnnouncementStatus = "archived"
)

type Announcement struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	UserID     uint               `gorm:"not null;index" json:"user_id"`
	User       User               `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CategoryID uint               `gorm:"not null;index" json:"category_id"`
	Category   Category           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Location   string             `gorm:"size:100;not null;index" json:"location"`
	Title      string             `gorm:"size:200;not null" json:"title"`
	Content    string             `gorm:"type:text;not null" json:"content"`
	Status     AnnouncementStatus `gorm:"size:20;default:'published';not null;index" json:"status"`
	ImageURL   *string            `json:"image_url"`
	CreatedAt  time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`

	// Not stored; filled in by queries.
	LikeCount    int64  `gorm:"-" json:"like_count"`
	DislikeCount int64  `gorm:"-" json:"dislike_count"`
	CommentCount int64  `gorm:"-" json:"comment_count"`
	ContentHTML  string `gorm:"-" json:"content_html,omitempty"`
}

// OwnerID implements Ownable.
func (a *Announcement) OwnerID() uint {
	return a.UserID
}
