package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/apperr"
	"noticeboard/internal/middleware"
	"noticeboard/internal/models"
	"noticeboard/internal/utils"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are hidden
// from the client and attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	message := "internal server error"

	var appErr *apperr.Error
	if kind != apperr.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(statusFor(kind), gin.H{
		"error": gin.H{
			"code":    kind,
			"message": message,
		},
	})
}

func badRequest(c *gin.Context, message string) {
	respondError(c, apperr.Validation(message))
}

// bindOptionalJSON binds the body into obj when one was sent. An empty body
// leaves obj untouched; a malformed one writes a 400 and returns false.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

// actor returns the identity of the logged-in user. Routes using it sit
// behind AuthRequired.
func actor(c *gin.Context) models.Actor {
	if user := middleware.CurrentUser(c); user != nil {
		return models.ActorFor(user)
	}
	return models.Actor{}
}

// idParam parses a positive numeric path parameter, writing a 400 if it is
// not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		badRequest(c, "invalid "+name)
	}
	return id, ok
}
