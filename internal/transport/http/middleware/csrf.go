package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CSRF enforces the double-submit check: for state-changing methods the
// csrfToken cookie and the x-csrf-token header must be present and equal.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get(CSRFHeader)
		c, err := r.Cookie(CSRFCookie)
		if err != nil || c.Value == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(c.Value), []byte(header)) != 1 {
			writeJSONError(w, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
