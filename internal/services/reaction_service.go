package services

import (
	"context"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/metrics"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
)

// ReactionCounts is the like/dislike tally of one announcement.
type ReactionCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

type ReactionService struct {
	repos   *repository.Repositories
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewReactionService(repos *repository.Repositories, logger *zap.Logger, m *metrics.Metrics) *ReactionService {
	return &ReactionService{repos: repos, logger: logger, metrics: m}
}

// ToggleLike likes the announcement, or removes an existing like. A dislike
// is switched to a like. It returns whether the user now likes it.
func (s *ReactionService) ToggleLike(ctx context.Context, announcementID, userID uint) (bool, error) {
	return s.toggle(ctx, announcementID, userID, models.ReactionLike)
}

// ToggleDislike mirrors ToggleLike.
func (s *ReactionService) ToggleDislike(ctx context.Context, announcementID, userID uint) (bool, error) {
	return s.toggle(ctx, announcementID, userID, models.ReactionDislike)
}

func (s *ReactionService) toggle(ctx context.Context, announcementID, userID uint, reactionType models.ReactionType) (bool, error) {
	if _, err := s.repos.Announcements.FindByID(ctx, announcementID); err != nil {
		return false, lookupErr(err, "announcement")
	}

	existing, err := s.repos.Reactions.Find(ctx, announcementID, userID)
	if err != nil && !repository.IsNotFound(err) {
		return false, apperr.Internal("failed to load reaction", err)
	}

	switch {
	case existing == nil:
		reaction := &models.Reaction{
			AnnouncementID: announcementID,
			UserID:         userID,
			Type:           reactionType,
		}
		if err := s.repos.Reactions.Create(ctx, reaction); err != nil {
			if repository.IsUniqueViolation(err) {
				return false, apperr.Conflict("reaction changed concurrently, try again")
			}
			return false, apperr.Internal("failed to save reaction", err)
		}
		s.metrics.IncReactionToggled(string(reactionType), "added")
		return true, nil

	case existing.Type == reactionType:
		if err := s.repos.Reactions.Delete(ctx, existing.ID); err != nil {
			return false, apperr.Internal("failed to remove reaction", err)
		}
		s.metrics.IncReactionToggled(string(reactionType), "removed")
		return false, nil

	default:
		if err := s.repos.Reactions.UpdateType(ctx, existing.ID, reactionType); err != nil {
			return false, apperr.Internal("failed to switch reaction", err)
		}
		s.metrics.IncReactionToggled(string(reactionType), "switched")
		s.logger.Debug("Reaction switched",
			zap.Uint("announcement_id", announcementID),
			zap.Uint("user_id", userID),
			zap.String("type", string(reactionType)),
		)
		return true, nil
	}
}

// Counts tallies likes and dislikes of an announcement.
func (s *ReactionService) Counts(ctx context.Context, announcementID uint) (ReactionCounts, error) {
	var counts ReactionCounts
	var err error
	if counts.Likes, err = s.repos.Reactions.Count(ctx, announcementID, models.ReactionLike); err != nil {
		return counts, apperr.Internal("failed to count likes", err)
	}
	if counts.Dislikes, err = s.repos.Reactions.Count(ctx, announcementID, models.ReactionDislike); err != nil {
		return counts, apperr.Internal("failed to count dislikes", err)
	}
	return counts, nil
}
