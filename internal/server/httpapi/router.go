package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// RouterConfig carries the transport settings of NewRouter.
type RouterConfig struct {
	Cookies        CookieConfig
	AllowedOrigins []string
}

// NewRouter builds the HTTP handler tree:
//
//	POST /api/users/         register
//	POST /api/users/login/   login, sets the session cookie
//	POST /api/users/logout/  logout, clears the session cookie
//	GET  /api/users/me/      current subject (session required)
//	GET  /healthz            liveness and database reachability
func NewRouter(h *AuthHandler, service AuthService, cfg RouterConfig, logger logging.Logger) http.Handler {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	router.Use(
		gin.Recovery(),
		RequestLogger(logger),
		CORS(CORSConfig{AllowedOrigins: cfg.AllowedOrigins, MaxAge: time.Hour}),
	)

	users := router.Group("/api/users")
	users.POST("/", h.Register)
	users.POST("/login/", h.Login)
	users.POST("/logout/", h.Logout)
	users.GET("/me/", RequireSession(service, cfg.Cookies, logger), h.Me)

	router.GET("/healthz", h.Health)

	return TrailingSlash(router)
}
