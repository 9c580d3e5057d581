package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name     string
	SameSite http.SameSite
	Secure   bool
}

// ParseSameSite maps lax, strict and none (any case) to http.SameSite.
func ParseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("%w: unknown SameSite mode %q", common.ErrConfiguration, s)
	}
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return common.DefaultSessionCookieName
	}
	return c.Name
}

// browsers drop SameSite=None cookies that are not Secure
func (c CookieConfig) secure() bool {
	return c.Secure || c.SameSite == http.SameSiteNoneMode
}

// Session builds the cookie carrying token for ttl.
func (c CookieConfig) Session(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure(),
		SameSite: c.SameSite,
	}
}

// Cleared builds a cookie that makes the browser drop the session.
func (c CookieConfig) Cleared() *http.Cookie {
	return &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure(),
		SameSite: c.SameSite,
	}
}

// ExtractToken returns the bearer token from the Authorization header, or
// the session cookie value when no bearer token is present.
func (c CookieConfig) ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > len(common.BearerPrefix) &&
		strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return strings.TrimSpace(h[len(common.BearerPrefix):])
	}
	if cookie, err := r.Cookie(c.name()); err == nil {
		return cookie.Value
	}
	return ""
}
