package handler

import (
	"net/http"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/transport/http/middleware"
)

// CookieConfig controls the attributes of the session and CSRF cookies.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (c CookieConfig) cookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.MaxAge / time.Second),
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c CookieConfig) setSession(w http.ResponseWriter, accessToken, csrfToken string) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, accessToken, true))
	c.setCSRF(w, csrfToken)
}

func (c CookieConfig) setCSRF(w http.ResponseWriter, csrfToken string) {
	http.SetCookie(w, c.cookie(middleware.CSRFCookie, csrfToken, false))
}

func (c CookieConfig) clearSession(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.CSRFCookie} {
		ck := c.cookie(name, "", name == middleware.AccessTokenCookie)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		http.SetCookie(w, ck)
	}
}
