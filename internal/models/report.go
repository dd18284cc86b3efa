package models

import (
	"time"
)

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportReviewed ReportStatus = "reviewed"
	ReportClosed   ReportStatus = "closed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportOpen, ReportReviewed, ReportClosed:
		return true
	}
	return false
}

// Report points at its target by (TargetType, TargetID); the target is not
// a database relation.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	ReporterID uint         `gorm:"not null;index;uniqueIndex:idx_report_reporter_target" json:"reporter_id"`
	Reporter   User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reporter"`
	TargetType TargetType   `gorm:"size:20;not null;uniqueIndex:idx_report_reporter_target;index:idx_report_target" json:"target_type"`
	TargetID   uint         `gorm:"not null;uniqueIndex:idx_report_reporter_target;index:idx_report_target" json:"target_id"`
	Reason     string       `gorm:"size:500;not null" json:"reason"`
	Status     ReportStatus `gorm:"size:20;default:'open';not null;index" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (r *Report) Target() Target {
	return Target{Kind: r.TargetType, ID: r.TargetID}
}
