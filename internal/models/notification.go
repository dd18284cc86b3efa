package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReport         NotificationType = "report"          // a report was filed
	NotificationTypeContentRemoved NotificationType = "content_removed" // content removed by a moderator
	NotificationTypeSystem         NotificationType = "system"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // Receiver
	ActorID   *uint            `gorm:"index" json:"actor_id"`         // Sender
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message   string           `gorm:"type:text" json:"message"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
