package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// subjectKey is the gin context key holding the resolved subject.
const subjectKey = "subject"

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// CORS adds CORS headers for allowed origins and answers preflight
// requests. Credentials are allowed, so a matching origin is echoed back
// instead of "*".
func CORS(config CORSConfig) gin.HandlerFunc {
	maxAge := strconv.Itoa(int(config.MaxAge / time.Second))
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if isOriginAllowed(origin, config.AllowedOrigins) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Accept, Content-Type")
			h.Set("Access-Control-Max-Age", maxAge)
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isOriginAllowed checks origin against the list; "*.example.com" matches
// subdomains.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, allowed[1:]) {
			return true
		}
	}
	return false
}

// SessionResolver turns a token into a subject.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (string, error)
}

// RequireSession rejects requests without a valid session with 401. On
// success the subject is stored both in the gin context and in the request
// context.
func RequireSession(resolver SessionResolver, cookies CookieConfig, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token := cookies.ExtractToken(c.Request)
		if token == "" {
			SendError(c, services.MsgNotAuthenticated, http.StatusUnauthorized)
			return
		}

		subject, err := resolver.ResolveSession(ctx, token)
		if err != nil {
			if common.IsSessionError(err) {
				logger.Debug(ctx, "session rejected", "reason", err.Error())
				SendError(c, services.MsgNotAuthenticated, http.StatusUnauthorized)
				return
			}
			logger.Error(ctx, "session resolution failed", "error", err)
			SendError(c, common.ErrorInternal.Error(), http.StatusInternalServerError)
			return
		}

		c.Set(subjectKey, subject)
		c.Request = c.Request.WithContext(auth.ContextWithSubject(ctx, subject))
		c.Next()
	}
}

// TrailingSlash appends a missing trailing slash to /api paths so that
// "/api/users/login" and "/api/users/login/" reach the same route. It wraps
// the engine because gin matches routes before any middleware runs.
func TrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && !strings.HasSuffix(r.URL.Path, "/") {
			r2 := r.Clone(r.Context())
			r2.URL.Path += "/"
			if r2.URL.RawPath != "" {
				r2.URL.RawPath += "/"
			}
			r = r2
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs method, path, status and duration of each request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"size", max(c.Writer.Size(), 0),
			"duration", time.Since(start),
		)
	}
}
