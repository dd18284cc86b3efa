package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Find* methods when no row matches.
var ErrNotFound = gorm.ErrRecordNotFound

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err came from a unique index. GORM only
// translates it when TranslateError is enabled, so the driver message is
// checked as well.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
