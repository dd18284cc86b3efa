package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/metrics"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
)

const MaxReportReasonLength = 500

var (
	ErrSelfReport      = apperr.Conflict("cannot report your own content")
	ErrAlreadyReported = apperr.Conflict("already reported")
)

// ReportService files reports and removes reported content together with
// every report that points at it.
type ReportService struct {
	repos         *repository.Repositories
	notifications *NotificationService
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

func NewReportService(repos *repository.Repositories, notifications *NotificationService, logger *zap.Logger, m *metrics.Metrics) *ReportService {
	return &ReportService{
		repos:         repos,
		notifications: notifications,
		logger:        logger,
		metrics:       m,
	}
}

// ReportTarget files a report by reporterID against target.
func (s *ReportService) ReportTarget(ctx context.Context, reporterID uint, target models.Target, reason string) (*models.Report, error) {
	ownerID, err := s.targetOwner(ctx, target)
	if err != nil {
		return nil, err
	}
	if ownerID == reporterID {
		return nil, ErrSelfReport
	}

	exists, err := s.repos.Reports.Exists(ctx, reporterID, target)
	if err != nil {
		return nil, apperr.Internal("failed to check existing reports", err)
	}
	if exists {
		return nil, ErrAlreadyReported
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxReportReasonLength {
		return nil, apperr.Validation(fmt.Sprintf("reason must be at most %d characters", MaxReportReasonLength))
	}

	report := &models.Report{
		ReporterID: reporterID,
		TargetType: target.Kind,
		TargetID:   target.ID,
		Reason:     reason,
		Status:     models.ReportOpen,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repos.Reports.Create(ctx, report); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyReported
		}
		return nil, apperr.Internal("failed to create report", err)
	}

	s.metrics.IncReportCreated(string(target.Kind))
	s.logger.Info("Report created",
		zap.Uint("report_id", report.ID),
		zap.Uint("reporter_id", reporterID),
		zap.String("target", target.String()),
	)

	message := fmt.Sprintf("New report #%d on %s: %s", report.ID, target, reason)
	if err := s.notifications.NotifyAdmins(ctx, &reporterID, models.NotificationTypeReport, message); err != nil {
		s.logger.Warn("Failed to notify administrators of report", zap.Uint("report_id", report.ID), zap.Error(err))
	}

	return report, nil
}

// targetOwner resolves target and returns the id of the user it belongs to.
// A user target belongs to that user.
func (s *ReportService) targetOwner(ctx context.Context, target models.Target) (uint, error) {
	switch target.Kind {
	case models.TargetComment:
		comment, err := s.repos.Comments.FindByID(ctx, target.ID)
		if err != nil {
			return 0, lookupErr(err, "comment")
		}
		return comment.OwnerID(), nil
	case models.TargetAnnouncement:
		announcement, err := s.repos.Announcements.FindByID(ctx, target.ID)
		if err != nil {
			return 0, lookupErr(err, "announcement")
		}
		return announcement.OwnerID(), nil
	case models.TargetUser:
		user, err := s.repos.Users.FindByID(ctx, target.ID)
		if err != nil {
			return 0, lookupErr(err, "user")
		}
		return user.ID, nil
	default:
		return 0, apperr.Validation(fmt.Sprintf("unknown target type %q", target.Kind))
	}
}

// DeleteCommentByReport removes the comment a report points at, along with
// its replies and every report against any of them. It returns false when
// nothing was deleted besides, possibly, a dangling report.
func (s *ReportService) DeleteCommentByReport(ctx context.Context, reportID uint) (bool, error) {
	return s.deleteByReport(ctx, reportID, models.TargetComment)
}

// DeleteAnnouncementByReport is DeleteCommentByReport for announcements.
func (s *ReportService) DeleteAnnouncementByReport(ctx context.Context, reportID uint) (bool, error) {
	return s.deleteByReport(ctx, reportID, models.TargetAnnouncement)
}

func (s *ReportService) deleteByReport(ctx context.Context, reportID uint, kind models.TargetType) (bool, error) {
	report, err := s.repos.Reports.FindByID(ctx, reportID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.logger.Warn("Report not found for deletion", zap.Uint("report_id", reportID))
			return false, nil
		}
		return false, apperr.Internal("failed to load report", err)
	}

	if report.TargetType != kind {
		s.logger.Warn("Report target type mismatch",
			zap.Uint("report_id", reportID),
			zap.String("expected", string(kind)),
			zap.String("actual", string(report.TargetType)),
		)
		return false, nil
	}

	target := report.Target()
	var removed int64
	var dangling bool
	err = s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.targetExists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			dangling = true
			if err := s.repos.Reports.Delete(ctx, report.ID); err != nil {
				return apperr.Internal("failed to delete dangling report", err)
			}
			return nil
		}

		switch kind {
		case models.TargetComment:
			removed, err = purgeComments(ctx, s.repos, []uint{target.ID})
		case models.TargetAnnouncement:
			removed, err = purgeAnnouncements(ctx, s.repos, []uint{target.ID})
		}
		if err != nil {
			return apperr.Internal("failed to delete reported "+string(kind), err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if dangling {
		s.logger.Warn("Reported target no longer exists, removing dangling report",
			zap.Uint("report_id", reportID),
			zap.String("target", target.String()),
		)
		return false, nil
	}

	s.metrics.IncTargetRemoved(string(kind))
	s.logger.Info("Deleted reported target and all its reports",
		zap.String("target_type", string(kind)),
		zap.Uint("target_id", target.ID),
		zap.Uint("report_id", reportID),
		zap.Int64("reports_removed", removed),
	)
	return true, nil
}

func (s *ReportService) targetExists(ctx context.Context, target models.Target) (bool, error) {
	var err error
	switch target.Kind {
	case models.TargetComment:
		_, err = s.repos.Comments.FindByID(ctx, target.ID)
	case models.TargetAnnouncement:
		_, err = s.repos.Announcements.FindByID(ctx, target.ID)
	case models.TargetUser:
		_, err = s.repos.Users.FindByID(ctx, target.ID)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, apperr.Internal("failed to load reported "+string(target.Kind), err)
	}
	return true, nil
}

// SetStatus overwrites the status of a report with any valid status. It
// returns false when the report does not exist.
func (s *ReportService) SetStatus(ctx context.Context, reportID uint, status models.ReportStatus) (bool, error) {
	if !status.Valid() {
		return false, apperr.Validation(fmt.Sprintf("unknown report status %q", status))
	}

	report, err := s.repos.Reports.FindByID(ctx, reportID)
	if err != nil {
		if repository.IsNotFound(err) {
			return false, nil
		}
		return false, apperr.Internal("failed to load report", err)
	}

	if report.Status == status {
		return true, nil
	}

	if err := s.repos.Reports.UpdateStatus(ctx, reportID, status); err != nil {
		return false, apperr.Internal("failed to update report status", err)
	}
	s.logger.Info("Report status updated",
		zap.Uint("report_id", reportID),
		zap.String("from", string(report.Status)),
		zap.String("to", string(status)),
	)
	return true, nil
}

func (s *ReportService) Get(ctx context.Context, reportID uint) (*models.Report, error) {
	report, err := s.repos.Reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, lookupErr(err, "report")
	}
	return report, nil
}

func (s *ReportService) ListByStatus(ctx context.Context, status models.ReportStatus) ([]*models.Report, error) {
	if !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown report status %q", status))
	}
	reports, err := s.repos.Reports.FindByStatus(ctx, status)
	if err != nil {
		return nil, apperr.Internal("failed to load reports", err)
	}
	return reports, nil
}

func (s *ReportService) ListByReporter(ctx context.Context, reporterID uint) ([]*models.Report, error) {
	reports, err := s.repos.Reports.FindByReporter(ctx, reporterID)
	if err != nil {
		return nil, apperr.Internal("failed to load reports", err)
	}
	return reports, nil
}

func (s *ReportService) ListForTarget(ctx context.Context, target models.Target) ([]*models.Report, error) {
	if !target.Kind.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown target type %q", target.Kind))
	}
	reports, err := s.repos.Reports.FindByTarget(ctx, target)
	if err != nil {
		return nil, apperr.Internal("failed to load reports", err)
	}
	return reports, nil
}
