package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"selfcheck/common"
	"selfcheck/logging"
	"selfcheck/models"
	"selfcheck/services"
	"selfcheck/sessions"
	"selfcheck/utils"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	auth     AuthService
	sessions sessions.Store
	log      logging.Logger
	cookie   CookieOptions
}

func NewAuthHandler(auth AuthService, store sessions.Store, log logging.Logger, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: store, log: log, cookie: cookie}
}

type registerRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	form := isFormRequest(c)

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.registerFailed(c, form, common.Validation("invalid request body"), codeMissingFields)
		return
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.registerFailed(c, form, common.Validation("username, email and password are required"), codeMissingFields)
		return
	}
	if req.ConfirmPassword != "" && !utils.SamePassword(req.Password, req.ConfirmPassword) {
		h.registerFailed(c, form, common.Validation("passwords do not match"), codePasswordMismatch)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		code := codeServerError
		switch {
		case errors.Is(err, common.ErrValidation):
			code = codeInvalidInput
		case errors.Is(err, common.ErrConflict):
			code = codeUserExists
		}
		h.registerFailed(c, form, err, code)
		return
	}

	if form {
		c.Redirect(http.StatusFound, "/index.html?success=1")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

func (h *AuthHandler) registerFailed(c *gin.Context, form bool, err error, code string) {
	if form {
		if statusFor(err) >= http.StatusInternalServerError {
			h.log.Error(c.Request.Context(), "registration failed", "request_id", c.GetString(ctxRequestID), "error", err)
		}
		redirectWithError(c, "/register.html", code)
		return
	}
	writeError(c, h.log, err)
}

// Login verifies credentials and opens a session. Unknown users and wrong
// passwords get the same 400 answer.
func (h *AuthHandler) Login(c *gin.Context) {
	form := isFormRequest(c)

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, form, common.Validation("invalid request body"), codeMissingFields)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			h.loginFailed(c, form, err, codeMissingFields)
		case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrUnauthorized):
			h.loginFailed(c, form, common.Validation("invalid credentials"), codeInvalidCredentials)
		default:
			h.loginFailed(c, form, err, codeServerError)
		}
		return
	}

	// Drop any session the client already holds before issuing a new one.
	if old, err := c.Cookie(sessions.CookieName); err == nil && old != "" {
		if err := h.sessions.Delete(c.Request.Context(), old); err != nil {
			h.log.Warn(c.Request.Context(), "could not drop previous session", "error", err)
		}
	}

	session, err := h.sessions.Create(c.Request.Context(), user.ID.String(), utils.GetUserAgent(c.Request), c.ClientIP())
	if err != nil {
		h.loginFailed(c, form, common.Storage("create session", err), codeSessionError)
		return
	}
	h.setSessionCookie(c, session.SessionToken, int(h.cookie.MaxAge/time.Second))

	if form {
		c.Redirect(http.StatusFound, "/dashboard.html")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "id": user.ID})
}

func (h *AuthHandler) loginFailed(c *gin.Context, form bool, err error, code string) {
	if form {
		if statusFor(err) >= http.StatusInternalServerError {
			h.log.Error(c.Request.Context(), "login failed", "request_id", c.GetString(ctxRequestID), "error", err)
		}
		redirectWithError(c, "/index.html", code)
		return
	}
	writeError(c, h.log, err)
}

// Logout runs behind the session gate.
func (h *AuthHandler) Logout(c *gin.Context) {
	form := isFormRequest(c)

	if err := h.sessions.Delete(c.Request.Context(), c.GetString(ctxSessionToken)); err != nil {
		if form {
			h.log.Error(c.Request.Context(), "logout failed", "request_id", c.GetString(ctxRequestID), "error", err)
			redirectWithError(c, "/index.html", codeLogoutError)
			return
		}
		writeError(c, h.log, common.Storage("delete session", err))
		return
	}
	h.setSessionCookie(c, "", -1)

	if form {
		c.Redirect(http.StatusFound, "/index.html?logout=1")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// SessionUser returns the username of the caller. A session whose user no
// longer exists gets a placeholder name.
func (h *AuthHandler) SessionUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if errors.Is(err, common.ErrNotFound) {
		h.log.Warn(c.Request.Context(), "session user not found", "user_id", userID)
		c.JSON(http.StatusOK, gin.H{"username": "guest"})
		return
	}
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessions.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
