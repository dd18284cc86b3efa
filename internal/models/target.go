package models

import "fmt"

type TargetType string

const (
	TargetAnnouncement TargetType = "announcement"
	TargetComment      TargetType = "comment"
	TargetUser         TargetType = "user"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetAnnouncement, TargetComment, TargetUser:
		return true
	}
	return false
}

// Target identifies the content or user a report or moderation action refers
// to. Build it with CommentTarget, AnnouncementTarget or UserTarget.
type Target struct {
	Kind TargetType `json:"kind"`
	ID   uint       `json:"id"`
}

func CommentTarget(id uint) Target      { return Target{Kind: TargetComment, ID: id} }
func AnnouncementTarget(id uint) Target { return Target{Kind: TargetAnnouncement, ID: id} }
func UserTarget(id uint) Target         { return Target{Kind: TargetUser, ID: id} }

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Ownable is implemented by content that belongs to a user.
type Ownable interface {
	OwnerID() uint
}
