package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
	"noticeboard/internal/utils"
)

const minPasswordLength = 6

// LogoutResult tells the caller whether the session was actually cleared.
type LogoutResult string

const (
	LogoutCompleted LogoutResult = "completed"
	LogoutCanceled  LogoutResult = "canceled"
)

// SessionStore is the part of a session Logout needs. sessions.Session
// satisfies it.
type SessionStore interface {
	Clear()
	Save() error
}

var errInvalidCredentials = apperr.Unauthorized("invalid email or password")

type AuthService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewAuthService(repos *repository.Repositories, logger *zap.Logger) *AuthService {
	return &AuthService{repos: repos, logger: logger}
}

// Register creates an active account with the user role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if utf8.RuneCountInString(username) > 50 {
		return nil, apperr.Validation("username must be at most 50 characters")
	}
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if parts := strings.Split(email, "@"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, apperr.Validation("email is not valid")
	}
	if err := validateNewPassword(password); err != nil {
		return nil, err
	}

	if _, err := s.repos.Users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !repository.IsNotFound(err) {
		return nil, apperr.Internal("failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.logger.Info("User registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and returns the account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repos.Users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		s.logger.Info("Login rejected", zap.Uint("user_id", user.ID))
		return nil, errInvalidCredentials
	}
	if user.IsBlocked() {
		return nil, apperr.Forbidden("account is blocked")
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, actor models.Actor, oldPassword, newPassword string) error {
	user, err := s.repos.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if !utils.CheckPasswordHash(oldPassword, user.Password) {
		return apperr.Unauthorized("current password is incorrect")
	}
	if err := validateNewPassword(newPassword); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repos.Users.UpdateFields(ctx, user.ID, map[string]interface{}{"password": hash}); err != nil {
		return apperr.Internal("failed to update password", err)
	}
	s.logger.Info("Password changed", zap.Uint("user_id", user.ID))
	return nil
}

// DeleteAccount removes the actor's account after re-checking the password.
// Their announcements, comments, reactions, notifications and filed reports
// go with it, as do reports against any of that content.
func (s *AuthService) DeleteAccount(ctx context.Context, actor models.Actor, password string) error {
	user, err := s.repos.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return apperr.Unauthorized("password is incorrect")
	}

	err = s.repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		announcementIDs, err := s.repos.Announcements.FindIDsByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if _, err := purgeAnnouncements(ctx, s.repos, announcementIDs); err != nil {
			return err
		}

		commentIDs, err := s.repos.Comments.FindIDsByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if _, err := purgeComments(ctx, s.repos, commentIDs); err != nil {
			return err
		}

		if err := s.repos.Reactions.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := s.repos.Reports.DeleteByReporter(ctx, user.ID); err != nil {
			return err
		}
		if _, err := s.repos.Reports.DeleteByTargets(ctx, models.TargetUser, []uint{user.ID}); err != nil {
			return err
		}
		if err := s.repos.Notifications.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return s.repos.Users.Delete(ctx, user.ID)
	})
	if err != nil {
		return apperr.Internal("failed to delete account", err)
	}

	s.logger.Info("Account deleted", zap.Uint("user_id", user.ID))
	return nil
}

// Logout clears the session. A cancelled ctx is not an error: the session
// is left untouched and LogoutCanceled is returned.
func (s *AuthService) Logout(ctx context.Context, session SessionStore) (LogoutResult, error) {
	if ctx.Err() != nil {
		return LogoutCanceled, nil
	}
	session.Clear()
	if err := session.Save(); err != nil {
		return "", apperr.Internal("failed to save session", err)
	}
	return LogoutCompleted, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateNewPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return utils.ErrEmptyPassword
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Validation("password must be at least 6 characters")
	}
	return nil
}
