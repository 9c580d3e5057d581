package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 64 << 10

// AuthService is what the handlers need from services.AuthService.
type AuthService interface {
	SessionResolver
	Register(ctx context.Context, username, email, password string) (*models.Credential, error)
	Login(ctx context.Context, identifier, password string) (*services.Session, error)
	Logout(ctx context.Context, token string) error
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest identifies the user by email; username is accepted when
// email is empty.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	SubjectID string `json:"subject_id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// AuthHandler serves the /api/users/ routes.
type AuthHandler struct {
	service AuthService
	cookies CookieConfig
	logger  logging.Logger
	health  HealthCheck
}

func NewAuthHandler(service AuthService, cookies CookieConfig, logger logging.Logger, health HealthCheck) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		logger:  logger.With("module", "http_handler"),
		health:  health,
	}
}

// Register handles POST /api/users/.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		SendError(c, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	cred, err := h.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateRegistration),
			errors.Is(err, common.ErrValidation),
			errors.Is(err, common.ErrInvalidPassword):
			SendError(c, services.PublicError(err), http.StatusBadRequest)
		default:
			h.logger.Error(ctx, "registration failed", "error", err)
			SendError(c, common.ErrorInternal.Error(), http.StatusInternalServerError)
		}
		return
	}

	SendSuccess(c, "User registered successfully", UserResponse{
		SubjectID: cred.SubjectID,
		Username:  cred.UserName,
		Email:     cred.Email,
	})
}

// Login handles POST /api/users/login/. Every failure is reported as the
// same 401 so callers cannot tell unknown users from wrong passwords.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		SendError(c, "Invalid request body", http.StatusBadRequest)
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Username
	}

	ctx := c.Request.Context()
	session, err := h.service.Login(ctx, identifier, req.Password)
	if err != nil {
		if !errors.Is(err, common.ErrInvalidCredentials) {
			h.logger.Warn(ctx, "login failed", "error", err)
		}
		SendError(c, services.MsgInvalidCredentials, http.StatusUnauthorized)
		return
	}

	http.SetCookie(c.Writer, h.cookies.Session(session.Token, session.TTL()))
	SendSuccess(c, "Login successful", LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Logout handles POST /api/users/logout/. The cookie is cleared even when
// the token is no longer valid.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := h.cookies.ExtractToken(c.Request)
	http.SetCookie(c.Writer, h.cookies.Cleared())

	if token == "" {
		SendError(c, services.MsgNotAuthenticated, http.StatusUnauthorized)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.Logout(ctx, token); err != nil {
		if common.IsSessionError(err) {
			SendError(c, services.MsgNotAuthenticated, http.StatusUnauthorized)
			return
		}
		h.logger.Error(ctx, "logout failed", "error", err)
		SendError(c, common.ErrorInternal.Error(), http.StatusInternalServerError)
		return
	}

	SendSuccess(c, "Logged out successfully", nil)
}

// Me handles GET /api/users/me/ behind RequireSession.
func (h *AuthHandler) Me(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c.Request.Context())
	if !ok {
		SendError(c, services.MsgNotAuthenticated, http.StatusUnauthorized)
		return
	}
	SendSuccess(c, "", UserResponse{SubjectID: subject})
}

// Health handles GET /healthz.
func (h *AuthHandler) Health(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn(ctx, "health check failed", "error", err)
			SendError(c, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	SendSuccess(c, "ok", nil)
}

// bindJSON decodes the body into dst, refusing bodies over maxBodyBytes.
func bindJSON(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	return c.ShouldBindJSON(dst)
}
