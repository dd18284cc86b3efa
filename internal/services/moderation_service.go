package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/metrics"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
	"noticeboard/internal/utils"
)

const (
	defaultActionLimit = 50
	maxActionLimit     = 200
)

var (
	errAdminRequired      = apperr.Forbidden("administrator role required")
	errSuperAdminRequired = apperr.Forbidden("super administrator role required")
)

// ModerationService holds the administrator operations. Each one that
// changes state appends a ModerationAction.
type ModerationService struct {
	repos         *repository.Repositories
	reports       *ReportService
	notifications *NotificationService
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

func NewModerationService(repos *repository.Repositories, reports *ReportService, notifications *NotificationService, logger *zap.Logger, m *metrics.Metrics) *ModerationService {
	return &ModerationService{
		repos:         repos,
		reports:       reports,
		notifications: notifications,
		logger:        logger,
		metrics:       m,
	}
}

func (s *ModerationService) BlockUser(ctx context.Context, actor models.Actor, userID uint, reason string) error {
	if !actor.IsAdmin() {
		return errAdminRequired
	}
	reason, err := checkReason(reason)
	if err != nil {
		return err
	}
	if userID == actor.UserID {
		return apperr.Validation("you cannot block yourself")
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if user.Role == models.RoleSuperAdmin {
		return apperr.Forbidden("super administrators cannot be blocked")
	}
	if user.IsAdmin() && !actor.IsSuperAdmin() {
		return apperr.Forbidden("only a super administrator can block an administrator")
	}
	if user.IsBlocked() {
		return nil
	}

	return s.setUserField(ctx, actor, user, "status", models.UserStatusBlocked, models.ActionBlockUser, reason)
}

func (s *ModerationService) UnblockUser(ctx context.Context, actor models.Actor, userID uint, reason string) error {
	if !actor.IsAdmin() {
		return errAdminRequired
	}
	reason, err := checkReason(reason)
	if err != nil {
		return err
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if !user.IsBlocked() {
		return nil
	}

	return s.setUserField(ctx, actor, user, "status", models.UserStatusActive, models.ActionUnblockUser, reason)
}

// PromoteUser makes a regular user an administrator.
func (s *ModerationService) PromoteUser(ctx context.Context, actor models.Actor, userID uint) error {
	if !actor.IsSuperAdmin() {
		return errSuperAdminRequired
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if user.Role == models.RoleSuperAdmin {
		return apperr.Conflict("user is already a super administrator")
	}
	if user.Role == models.RoleAdmin {
		return nil
	}

	return s.setUserField(ctx, actor, user, "role", models.RoleAdmin, models.ActionPromoteUser, "")
}

// DemoteUser turns an administrator back into a regular user.
func (s *ModerationService) DemoteUser(ctx context.Context, actor models.Actor, userID uint) error {
	if !actor.IsSuperAdmin() {
		return errSuperAdminRequired
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if user.Role == models.RoleSuperAdmin {
		return apperr.Forbidden("super administrators cannot be demoted")
	}
	if user.Role == models.RoleUser {
		return nil
	}

	return s.setUserField(ctx, actor, user, "role", models.RoleUser, models.ActionDemoteUser, "")
}

func (s *ModerationService) setUserField(ctx context.Context, actor models.Actor, user *models.User, field string, value interface{}, kind models.ModerationActionKind, reason string) error {
	err := s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Users.UpdateFields(ctx, user.ID, map[string]interface{}{field: value}); err != nil {
			return err
		}
		return s.record(ctx, actor, models.UserTarget(user.ID), kind, reason)
	})
	if err != nil {
		return apperr.Internal("failed to update user", err)
	}

	s.metrics.IncModerationAction(string(kind))
	s.logger.Info("User moderated",
		zap.String("action", string(kind)),
		zap.Uint("admin_id", actor.UserID),
		zap.Uint("user_id", user.ID),
	)
	return nil
}

// RemoveReportedComment deletes the comment a report points at. It returns
// false when nothing but a dangling report was removed.
func (s *ModerationService) RemoveReportedComment(ctx context.Context, actor models.Actor, reportID uint, reason string) (bool, error) {
	return s.removeReported(ctx, actor, reportID, reason, models.TargetComment)
}

// RemoveReportedAnnouncement is RemoveReportedComment for announcements.
func (s *ModerationService) RemoveReportedAnnouncement(ctx context.Context, actor models.Actor, reportID uint, reason string) (bool, error) {
	return s.removeReported(ctx, actor, reportID, reason, models.TargetAnnouncement)
}

func (s *ModerationService) removeReported(ctx context.Context, actor models.Actor, reportID uint, reason string, kind models.TargetType) (bool, error) {
	if !actor.IsAdmin() {
		return false, errAdminRequired
	}
	reason, err := checkReason(reason)
	if err != nil {
		return false, err
	}

	// Captured before deletion so the owner can be told what went.
	owner, excerpt := s.describeReported(ctx, reportID, kind)

	var removed bool
	var target models.Target
	err = s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		report, err := s.repos.Reports.FindByID(ctx, reportID)
		if err == nil {
			target = report.Target()
		}

		switch kind {
		case models.TargetComment:
			removed, err = s.reports.DeleteCommentByReport(ctx, reportID)
		default:
			removed, err = s.reports.DeleteAnnouncementByReport(ctx, reportID)
		}
		if err != nil || !removed {
			return err
		}

		actionKind := models.ActionDeleteComment
		if kind == models.TargetAnnouncement {
			actionKind = models.ActionDeleteAnnouncement
		}
		return s.record(ctx, actor, target, actionKind, reason)
	})
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	if kind == models.TargetComment {
		s.metrics.IncModerationAction(string(models.ActionDeleteComment))
	} else {
		s.metrics.IncModerationAction(string(models.ActionDeleteAnnouncement))
	}

	if owner != 0 {
		message := fmt.Sprintf("Your %s \"%s\" was removed by a moderator.", kind, excerpt)
		if reason != "" {
			message += " Reason: " + reason
		}
		if err := s.notifications.Notify(ctx, owner, &actor.UserID, models.NotificationTypeContentRemoved, message); err != nil {
			s.logger.Warn("Failed to notify content owner", zap.Uint("user_id", owner), zap.Error(err))
		}
	}
	return true, nil
}

// describeReported returns the owner and a short excerpt of the content a
// report of the given kind points at, or zero values when it cannot be
// resolved.
func (s *ModerationService) describeReported(ctx context.Context, reportID uint, kind models.TargetType) (uint, string) {
	report, err := s.repos.Reports.FindByID(ctx, reportID)
	if err != nil || report.TargetType != kind {
		return 0, ""
	}
	switch kind {
	case models.TargetComment:
		comment, err := s.repos.Comments.FindByID(ctx, report.TargetID)
		if err != nil {
			return 0, ""
		}
		return comment.UserID, utils.PlainExcerpt(comment.Content, 40)
	case models.TargetAnnouncement:
		announcement, err := s.repos.Announcements.FindByID(ctx, report.TargetID)
		if err != nil {
			return 0, ""
		}
		return announcement.UserID, utils.PlainExcerpt(announcement.Title, 40)
	}
	return 0, ""
}

// EditReportedComment replaces the body of a reported comment and marks the
// report reviewed.
func (s *ModerationService) EditReportedComment(ctx context.Context, actor models.Actor, reportID uint, newBody string) error {
	return s.editReported(ctx, actor, reportID, newBody, models.TargetComment)
}

// EditReportedAnnouncement replaces the body of a reported announcement and
// marks the report reviewed.
func (s *ModerationService) EditReportedAnnouncement(ctx context.Context, actor models.Actor, reportID uint, newBody string) error {
	return s.editReported(ctx, actor, reportID, newBody, models.TargetAnnouncement)
}

func (s *ModerationService) editReported(ctx context.Context, actor models.Actor, reportID uint, newBody string, kind models.TargetType) error {
	if !actor.IsAdmin() {
		return errAdminRequired
	}
	newBody = strings.TrimSpace(newBody)
	if newBody == "" {
		return apperr.Validation("content must not be empty")
	}

	report, err := s.repos.Reports.FindByID(ctx, reportID)
	if err != nil {
		return lookupErr(err, "report")
	}
	if report.TargetType != kind {
		return apperr.Validation(fmt.Sprintf("report %d does not target a %s", reportID, kind))
	}

	var ownerID uint
	var actionKind models.ModerationActionKind
	err = s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		switch kind {
		case models.TargetComment:
			comment, err := s.repos.Comments.FindByID(ctx, report.TargetID)
			if err != nil {
				return lookupErr(err, "comment")
			}
			comment.Content = newBody
			if err := s.repos.Comments.Update(ctx, comment); err != nil {
				return apperr.Internal("failed to update comment", err)
			}
			ownerID = comment.UserID
			actionKind = models.ActionEditComment
		default:
			announcement, err := s.repos.Announcements.FindByID(ctx, report.TargetID)
			if err != nil {
				return lookupErr(err, "announcement")
			}
			announcement.Content = newBody
			if err := s.repos.Announcements.Update(ctx, announcement); err != nil {
				return apperr.Internal("failed to update announcement", err)
			}
			ownerID = announcement.UserID
			actionKind = models.ActionEditAnnouncement
		}

		if report.Status == models.ReportOpen {
			if err := s.repos.Reports.UpdateStatus(ctx, report.ID, models.ReportReviewed); err != nil {
				return apperr.Internal("failed to update report status", err)
			}
		}
		if err := s.record(ctx, actor, report.Target(), actionKind, fmt.Sprintf("edited via report #%d", report.ID)); err != nil {
			return apperr.Internal("failed to record moderation action", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncModerationAction(string(actionKind))
	s.logger.Info("Reported content edited",
		zap.String("target", report.Target().String()),
		zap.Uint("report_id", report.ID),
		zap.Uint("admin_id", actor.UserID),
	)

	message := fmt.Sprintf("Your %s was edited by a moderator.", kind)
	if err := s.notifications.Notify(ctx, ownerID, &actor.UserID, models.NotificationTypeSystem, message); err != nil {
		s.logger.Warn("Failed to notify content owner", zap.Uint("user_id", ownerID), zap.Error(err))
	}
	return nil
}

// UpdateReportStatus moves a report to status and records the change. It
// returns false when the report does not exist.
func (s *ModerationService) UpdateReportStatus(ctx context.Context, actor models.Actor, reportID uint, status models.ReportStatus) (bool, error) {
	if !actor.IsAdmin() {
		return false, errAdminRequired
	}

	var updated bool
	err := s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		report, err := s.repos.Reports.FindByID(ctx, reportID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return apperr.Internal("failed to load report", err)
		}
		previous := report.Status

		if updated, err = s.reports.SetStatus(ctx, reportID, status); err != nil || !updated {
			return err
		}
		if previous == status {
			return nil
		}
		reason := fmt.Sprintf("report #%d %s -> %s", report.ID, previous, status)
		if err := s.record(ctx, actor, report.Target(), models.ActionUpdateReport, reason); err != nil {
			return apperr.Internal("failed to record moderation action", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if updated {
		s.metrics.IncModerationAction(string(models.ActionUpdateReport))
	}
	return updated, nil
}

// ListActions returns the most recent moderation actions, newest first.
func (s *ModerationService) ListActions(ctx context.Context, limit int) ([]*models.ModerationAction, error) {
	if limit <= 0 {
		limit = defaultActionLimit
	}
	if limit > maxActionLimit {
		limit = maxActionLimit
	}
	actions, err := s.repos.Moderation.FindRecent(ctx, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load moderation log", err)
	}
	return actions, nil
}

func (s *ModerationService) record(ctx context.Context, actor models.Actor, target models.Target, kind models.ModerationActionKind, reason string) error {
	return s.repos.Moderation.Create(ctx, &models.ModerationAction{
		AdminID:    actor.UserID,
		TargetType: target.Kind,
		TargetID:   target.ID,
		Action:     kind,
		Reason:     reason,
	})
}

func checkReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > MaxReportReasonLength {
		return "", apperr.Validation(fmt.Sprintf("reason must be at most %d characters", MaxReportReasonLength))
	}
	return reason, nil
}

// ActionsForTarget returns the moderation history of one target, oldest first.
func (s *ModerationService) ActionsForTarget(ctx context.Context, target models.Target) ([]*models.ModerationAction, error) {
	if !target.Kind.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown target type %q", target.Kind))
	}
	actions, err := s.repos.Moderation.FindByTarget(ctx, target)
	if err != nil {
		return nil, apperr.Internal("failed to load moderation history", err)
	}
	return actions, nil
}
