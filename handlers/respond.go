// Package handlers holds the gin handlers and middleware of the HTTP API.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"selfcheck/common"
	"selfcheck/logging"
)

const (
	ctxUserID       = "user_id"
	ctxSessionToken = "session_token"
	ctxRequestID    = "request_id"
)

// Form-mode error codes carried in the redirect query string.
const (
	codeMissingFields      = "missing_fields"
	codePasswordMismatch   = "password_mismatch"
	codeInvalidInput       = "invalid_input"
	codeUserExists         = "user_exists"
	codeServerError        = "server_error"
	codeInvalidCredentials = "invalid_credentials"
	codeSessionError       = "session_error"
	codeLogoutError        = "logout_error"
)

// isFormRequest reports whether the request came from a plain HTML form
// rather than from script. Such requests get redirects instead of JSON.
func isFormRequest(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/x-www-form-urlencoded") ||
		strings.Contains(c.GetHeader("Accept"), "text/html")
}

func redirectWithError(c *gin.Context, page, code string) {
	c.Redirect(http.StatusFound, page+"?error="+url.QueryEscape(code))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrCooldown):
		return http.StatusConflict
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and a {"message"} body. Server errors are
// logged and answered with a generic message.
func writeError(c *gin.Context, log logging.Logger, err error) {
	writeErrorStatus(c, log, err, statusFor(err))
}

func writeErrorStatus(c *gin.Context, log logging.Logger, err error, status int) {
	if status >= http.StatusInternalServerError {
		log.Error(c.Request.Context(), "request failed",
			"request_id", c.GetString(ctxRequestID), "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"message": common.Message(err, http.StatusText(status))})
}

// currentUserID returns the id the session gate stored on the context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
