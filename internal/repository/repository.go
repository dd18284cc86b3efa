package repository

import "gorm.io/gorm"

// Repositories bundles every store over one connection.
type Repositories struct {
	Tx            Transactor
	Users         UserRepository
	Categories    CategoryRepository
	Announcements AnnouncementRepository
	Comments      CommentRepository
	Reactions     ReactionRepository
	Reports       ReportRepository
	Moderation    ModerationRepository
	Notifications NotificationRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Tx:            NewTransactor(db),
		Users:         NewUserRepository(db),
		Categories:    NewCategoryRepository(db),
		Announcements: NewAnnouncementRepository(db),
		Comments:      NewCommentRepository(db),
		Reactions:     NewReactionRepository(db),
		Reports:       NewReportRepository(db),
		Moderation:    NewModerationRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
