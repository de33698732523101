// Package v1 exposes the authentication HTTP API. It translates the logic
// layer's error kinds into statuses and user-facing messages; no policy
// lives here.
package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minhdang/passport/internal/core/domain"
	"github.com/minhdang/passport/internal/logger"
	logicv1 "github.com/minhdang/passport/internal/logic/v1"
	"github.com/minhdang/passport/internal/session"
	"github.com/minhdang/passport/middleware"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "session_id"

const userContextKey = "auth_user"

// Handler groups HTTP handlers for the auth API v1.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	auth         *logicv1.AuthService
	gate         *logicv1.AccessGate
	sessions     *session.Manager
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(auth *logicv1.AuthService, gate *logicv1.AccessGate, sessions *session.Manager, sessionTTL time.Duration, cookieSecure bool) *Handler {
	return &Handler{
		auth:         auth,
		gate:         gate,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers all auth API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/auth/me", h.RequireSession(), h.GetMe)
}

// Register handles HTTP requests for user registration.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	// Bind leniently (JSON or form); field presence is the service's call
	// so the error ordering stays stable.
	var req domain.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request"})
		return
	}

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Registration failed")

		switch {
		case errors.Is(err, logicv1.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required and the password must be at least 6 characters"})
		case errors.Is(err, logicv1.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("Registration successful")
	c.JSON(http.StatusCreated, user)
}

// Login handles HTTP requests for user login. On success it issues a
// session and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed request"})
		return
	}

	user, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("Login failed")

		switch {
		case errors.Is(err, logicv1.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		case errors.Is(err, logicv1.ErrUserNotFound), errors.Is(err, logicv1.ErrInvalidCredentials):
			// Same body for both so responses don't enumerate accounts.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	token := h.sessions.Issue(user.Email)
	c.SetCookie(SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", h.cookieSecure, true)

	log.Info().Int64("user_id", user.ID).Msg("Login successful")
	c.JSON(http.StatusOK, user)
}

// Logout destroys the session, if any, and clears the cookie. Idempotent.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		h.sessions.Destroy(token)
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.cookieSecure, true)

	logger.FromContext(ctx).Info().Msg("Logged out")
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// RequireSession gates protected routes. It resolves the session cookie to
// a user and stores it in the gin context; unauthenticated requests are
// rejected with 401.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := c.Cookie(SessionCookie)
		if err != nil {
			token = ""
		}

		user, err := h.gate.Authorize(ctx, token)
		if err != nil {
			if !errors.Is(err, logicv1.ErrUnauthenticated) {
				logger.FromContext(ctx).Error().Err(err).Msg("Session check failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// GetMe returns the authenticated user resolved by RequireSession.
func (h *Handler) GetMe(c *gin.Context) {
	user, ok := c.Get(userContextKey)
	if !ok {
		// RequireSession was bypassed; treat as anonymous.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, user.(*domain.User))
}
