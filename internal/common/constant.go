package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests and
	// gRPC metadata.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix precedes the token in the authorization value.
	BearerPrefix = "Bearer "

	// DefaultSessionCookieName is used when no cookie name is configured.
	DefaultSessionCookieName = "session"
)
