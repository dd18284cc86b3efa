package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
)

const (
	CheckUserKey  = "user"
	SessionUserID = "user_id"
)

// LoadUser resolves the session's user and stores it under CheckUserKey.
// A session pointing at a deleted user is cleared.
func LoadUser(users repository.UserRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserID).(uint)
		if !ok || userID == 0 {
			c.Next()
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set(CheckUserKey, user)
		case repository.IsNotFound(err):
			session.Clear()
			if err := session.Save(); err != nil {
				logger.Warn("Failed to clear stale session", zap.Error(err))
			}
		default:
			logger.Error("Failed to load session user", zap.Uint("user_id", userID), zap.Error(err))
		}
		c.Next()
	}
}

// AuthRequired rejects requests without a logged-in user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abortWithError(c, http.StatusUnauthorized, apperr.KindUnauthorized, "login required")
			return
		}
		c.Next()
	}
}

// AdminRequired rejects requests from users without an admin role.
// It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			abortWithError(c, http.StatusForbidden, apperr.KindForbidden, "administrator role required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func abortWithError(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    kind,
			"message": message,
		},
	})
}
