package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
	"noticeboard/internal/utils"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	categoriesCacheKey = "categories"
)

// AnnouncementInput carries the editable fields of an announcement.
type AnnouncementInput struct {
	CategoryID uint                      `json:"category_id"`
	Location   string                    `json:"location"`
	Title      string                    `json:"title"`
	Content    string                    `json:"content"`
	ImageURL   *string                   `json:"image_url"`
	Status     models.AnnouncementStatus `json:"status"`
}

// AnnouncementQuery filters List. An empty Status lists published items.
type AnnouncementQuery struct {
	Location   string
	CategoryID uint
	UserID     uint
	Status     models.AnnouncementStatus
	Page       int
	PageSize   int
}

type AnnouncementPage struct {
	Items    []*models.Announcement `json:"items"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

type AnnouncementService struct {
	repos  *repository.Repositories
	cache  *utils.Cache
	logger *zap.Logger
}

func NewAnnouncementService(repos *repository.Repositories, cache *utils.Cache, logger *zap.Logger) *AnnouncementService {
	return &AnnouncementService{repos: repos, cache: cache, logger: logger}
}

func (s *AnnouncementService) Create(ctx context.Context, actor models.Actor, input AnnouncementInput) (*models.Announcement, error) {
	if _, err := activeUser(ctx, s.repos, actor); err != nil {
		return nil, err
	}
	input = trimInput(input)
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		UserID:     actor.UserID,
		CategoryID: input.CategoryID,
		Location:   input.Location,
		Title:      input.Title,
		Content:    input.Content,
		ImageURL:   input.ImageURL,
		Status:     models.AnnouncementPublished,
	}
	if err := s.repos.Announcements.Create(ctx, announcement); err != nil {
		return nil, apperr.Internal("failed to create announcement", err)
	}

	s.logger.Info("Announcement created",
		zap.Uint("announcement_id", announcement.ID),
		zap.Uint("user_id", actor.UserID),
		zap.String("location", announcement.Location),
	)
	return announcement, nil
}

func (s *AnnouncementService) Update(ctx context.Context, actor models.Actor, id uint, input AnnouncementInput) (*models.Announcement, error) {
	if _, err := activeUser(ctx, s.repos, actor); err != nil {
		return nil, err
	}
	announcement, err := s.repos.Announcements.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "announcement")
	}
	if err := requireOwner(actor, announcement, "announcements"); err != nil {
		return nil, err
	}

	input = trimInput(input)
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	if input.Status != "" {
		if input.Status != models.AnnouncementPublished && input.Status != models.AnnouncementArchived {
			return nil, apperr.Validation(fmt.Sprintf("unknown announcement status %q", input.Status))
		}
		announcement.Status = input.Status
	}

	announcement.CategoryID = input.CategoryID
	announcement.Location = input.Location
	announcement.Title = input.Title
	announcement.Content = input.Content
	announcement.ImageURL = input.ImageURL
	if err := s.repos.Announcements.Update(ctx, announcement); err != nil {
		return nil, apperr.Internal("failed to update announcement", err)
	}

	s.cache.DeletePrefix(renderedPrefix(id))
	return announcement, nil
}

// Delete removes the actor's announcement with its comments, reactions and
// every report against it or its comments.
func (s *AnnouncementService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	announcement, err := s.repos.Announcements.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "announcement")
	}
	if err := requireOwner(actor, announcement, "announcements"); err != nil {
		return err
	}

	var removed int64
	err = s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		removed, err = purgeAnnouncements(ctx, s.repos, []uint{id})
		return err
	})
	if err != nil {
		return apperr.Internal("failed to delete announcement", err)
	}

	s.cache.DeletePrefix(renderedPrefix(id))
	s.logger.Info("Announcement deleted",
		zap.Uint("announcement_id", id),
		zap.Int64("reports_removed", removed),
	)
	return nil
}

// Get returns the announcement with its counters and rendered body.
func (s *AnnouncementService) Get(ctx context.Context, id uint) (*models.Announcement, error) {
	announcement, err := s.repos.Announcements.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "announcement")
	}

	if announcement.LikeCount, err = s.repos.Reactions.Count(ctx, id, models.ReactionLike); err != nil {
		return nil, apperr.Internal("failed to count likes", err)
	}
	if announcement.DislikeCount, err = s.repos.Reactions.Count(ctx, id, models.ReactionDislike); err != nil {
		return nil, apperr.Internal("failed to count dislikes", err)
	}
	if announcement.CommentCount, err = s.repos.Comments.CountByAnnouncement(ctx, id); err != nil {
		return nil, apperr.Internal("failed to count comments", err)
	}

	key := fmt.Sprintf("%s%d", renderedPrefix(id), announcement.UpdatedAt.UnixNano())
	if cached, ok := s.cache.Get(key).(string); ok {
		announcement.ContentHTML = cached
	} else {
		announcement.ContentHTML = utils.RenderMarkdown(announcement.Content)
		s.cache.Set(key, announcement.ContentHTML)
	}
	return announcement, nil
}

func (s *AnnouncementService) List(ctx context.Context, query AnnouncementQuery) (*AnnouncementPage, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = DefaultPageSize
	}
	if query.PageSize > MaxPageSize {
		query.PageSize = MaxPageSize
	}
	if query.Status == "" {
		query.Status = models.AnnouncementPublished
	}

	items, total, err := s.repos.Announcements.List(ctx, repository.AnnouncementFilter{
		Location:   strings.TrimSpace(query.Location),
		CategoryID: query.CategoryID,
		UserID:     query.UserID,
		Status:     query.Status,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		return nil, apperr.Internal("failed to list announcements", err)
	}

	return &AnnouncementPage{
		Items:    items,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// Categories returns every category; the list is cached.
func (s *AnnouncementService) Categories(ctx context.Context) ([]*models.Category, error) {
	if cached, ok := s.cache.Get(categoriesCacheKey).([]*models.Category); ok {
		return cached, nil
	}
	categories, err := s.repos.Categories.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load categories", err)
	}
	s.cache.Set(categoriesCacheKey, categories)
	return categories, nil
}

func (s *AnnouncementService) validate(ctx context.Context, input AnnouncementInput) error {
	switch {
	case input.Title == "":
		return apperr.Validation("title is required")
	case utf8.RuneCountInString(input.Title) > 200:
		return apperr.Validation("title must be at most 200 characters")
	case input.Content == "":
		return apperr.Validation("content is required")
	case input.Location == "":
		return apperr.Validation("location is required")
	case utf8.RuneCountInString(input.Location) > 100:
		return apperr.Validation("location must be at most 100 characters")
	case input.CategoryID == 0:
		return apperr.Validation("category is required")
	}

	if _, err := s.repos.Categories.FindByID(ctx, input.CategoryID); err != nil {
		if repository.IsNotFound(err) {
			return apperr.Validation("category does not exist")
		}
		return apperr.Internal("failed to load category", err)
	}
	return nil
}

func trimInput(input AnnouncementInput) AnnouncementInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Location = strings.TrimSpace(input.Location)
	if input.ImageURL != nil {
		url := strings.TrimSpace(*input.ImageURL)
		if url == "" {
			input.ImageURL = nil
		} else {
			input.ImageURL = &url
		}
	}
	return input
}

func renderedPrefix(id uint) string {
	return fmt.Sprintf("announcement:%d:", id)
}
