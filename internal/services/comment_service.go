package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
)

const maxCommentLength = 2000

type CommentService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewCommentService(repos *repository.Repositories, logger *zap.Logger) *CommentService {
	return &CommentService{repos: repos, logger: logger}
}

// Create adds a comment to an announcement. parentID, when set, must name a
// top-level comment on the same announcement: replies are one level deep.
func (s *CommentService) Create(ctx context.Context, actor models.Actor, announcementID uint, parentID *uint, body string) (*models.Comment, error) {
	if _, err := activeUser(ctx, s.repos, actor); err != nil {
		return nil, err
	}
	body, err := validateCommentBody(body)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Announcements.FindByID(ctx, announcementID); err != nil {
		return nil, lookupErr(err, "announcement")
	}

	if parentID != nil {
		parent, err := s.repos.Comments.FindByID(ctx, *parentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperr.Validation("parent comment does not exist")
			}
			return nil, apperr.Internal("failed to load parent comment", err)
		}
		if !parent.IsTopLevel() {
			return nil, apperr.Validation("replies cannot be nested")
		}
		if parent.AnnouncementID != announcementID {
			return nil, apperr.Validation("parent comment belongs to another announcement")
		}
	}

	comment := &models.Comment{
		AnnouncementID: announcementID,
		UserID:         actor.UserID,
		ParentID:       parentID,
		Content:        body,
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, apperr.Internal("failed to create comment", err)
	}

	s.logger.Debug("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.Uint("announcement_id", announcementID),
	)
	return comment, nil
}

// ListTopLevel returns the comments directly under an announcement.
func (s *CommentService) ListTopLevel(ctx context.Context, announcementID uint) ([]*models.Comment, error) {
	if _, err := s.repos.Announcements.FindByID(ctx, announcementID); err != nil {
		return nil, lookupErr(err, "announcement")
	}
	comments, err := s.repos.Comments.FindTopLevel(ctx, announcementID)
	if err != nil {
		return nil, apperr.Internal("failed to load comments", err)
	}
	return comments, nil
}

func (s *CommentService) ListReplies(ctx context.Context, commentID uint) ([]*models.Comment, error) {
	if _, err := s.repos.Comments.FindByID(ctx, commentID); err != nil {
		return nil, lookupErr(err, "comment")
	}
	replies, err := s.repos.Comments.FindReplies(ctx, commentID)
	if err != nil {
		return nil, apperr.Internal("failed to load replies", err)
	}
	return replies, nil
}

func (s *CommentService) Update(ctx context.Context, actor models.Actor, id uint, body string) (*models.Comment, error) {
	if _, err := activeUser(ctx, s.repos, actor); err != nil {
		return nil, err
	}
	comment, err := s.repos.Comments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "comment")
	}
	if err := requireOwner(actor, comment, "comments"); err != nil {
		return nil, err
	}
	if comment.Content, err = validateCommentBody(body); err != nil {
		return nil, err
	}

	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		return nil, apperr.Internal("failed to update comment", err)
	}
	return comment, nil
}

// Delete removes the actor's comment, its replies and every report against
// any of them.
func (s *CommentService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	comment, err := s.repos.Comments.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "comment")
	}
	if err := requireOwner(actor, comment, "comments"); err != nil {
		return err
	}

	var removed int64
	err = s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		removed, err = purgeComments(ctx, s.repos, []uint{id})
		return err
	})
	if err != nil {
		return apperr.Internal("failed to delete comment", err)
	}

	s.logger.Info("Comment deleted",
		zap.Uint("comment_id", id),
		zap.Int64("reports_removed", removed),
	)
	return nil
}

func validateCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", apperr.Validation("comment must not be empty")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return "", apperr.Validation("comment must be at most 2000 characters")
	}
	return body, nil
}
