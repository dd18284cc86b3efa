package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard/internal/config"
	"noticeboard/internal/handlers"
	"noticeboard/internal/metrics"
	"noticeboard/internal/middleware"
	"noticeboard/internal/repository"
	"noticeboard/internal/services"
)

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	DB      *gorm.DB
	Repos   *repository.Repositories
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// MetricsHandler serves /metrics; nil disables the endpoint.
	MetricsHandler http.Handler

	Auth          *services.AuthService
	Announcements *services.AnnouncementService
	Comments      *services.CommentService
	Reactions     *services.ReactionService
	Reports       *services.ReportService
	Notifications *services.NotificationService
	Moderation    *services.ModerationService
}

// DefaultMetricsHandler serves the default prometheus registry.
func DefaultMetricsHandler() http.Handler {
	return promhttp.Handler()
}

// New builds the engine with the global middleware and every route.
func New(cfg config.SessionConfig, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Name, store))
	r.Use(middleware.LoadUser(deps.Repos.Users, deps.Logger))

	RegisterRoutes(r, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	// Handlers
	healthHandler := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.Auth)
	categoryHandler := handlers.NewCategoryHandler(deps.Announcements)
	announcementHandler := handlers.NewAnnouncementHandler(deps.Announcements)
	commentHandler := handlers.NewCommentHandler(deps.Comments)
	reactionHandler := handlers.NewReactionHandler(deps.Reactions)
	reportHandler := handlers.NewReportHandler(deps.Reports)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
	userHandler := handlers.NewUserHandler(deps.Auth, deps.Announcements)
	adminHandler := handlers.NewAdminHandler(deps.Reports, deps.Moderation)

	r.GET("/healthz", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// Public routes
	r.POST("/signup", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/categories", categoryHandler.List)
	r.GET("/announcements", announcementHandler.List)
	r.GET("/announcements/:id", announcementHandler.Get)
	r.GET("/announcements/:id/comments", commentHandler.List)
	r.GET("/comments/:id/replies", commentHandler.Replies)
	r.GET("/users/:id", userHandler.Profile)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.PUT("/me/password", authHandler.ChangePassword)
		authorized.DELETE("/me", authHandler.DeleteAccount)
		authorized.GET("/me/reports", reportHandler.Mine)

		authorized.POST("/announcements", announcementHandler.Create)
		authorized.PUT("/announcements/:id", announcementHandler.Update)
		authorized.DELETE("/announcements/:id", announcementHandler.Delete)
		authorized.POST("/announcements/:id/like", reactionHandler.Like)
		authorized.POST("/announcements/:id/dislike", reactionHandler.Dislike)
		authorized.POST("/announcements/:id/comments", commentHandler.Create)

		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)

		authorized.POST("/reports", reportHandler.Create)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authorized.POST("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/reports", adminHandler.Reports)
		admin.PUT("/reports/:id/status", adminHandler.UpdateReportStatus)
		admin.POST("/reports/:id/remove-comment", adminHandler.RemoveComment)
		admin.POST("/reports/:id/remove-announcement", adminHandler.RemoveAnnouncement)
		admin.PUT("/reports/:id/edit-comment", adminHandler.EditComment)
		admin.PUT("/reports/:id/edit-announcement", adminHandler.EditAnnouncement)
		admin.GET("/targets/:type/:id", adminHandler.TargetReports)

		admin.POST("/users/:id/block", adminHandler.BlockUser)
		admin.POST("/users/:id/unblock", adminHandler.UnblockUser)
		admin.POST("/users/:id/promote", adminHandler.PromoteUser)
		admin.POST("/users/:id/demote", adminHandler.DemoteUser)

		admin.GET("/actions", adminHandler.Actions)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{"code": "NOT_FOUND", "message": "route not found"},
		})
	})
}
