package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/validate"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidationEnvelope reports request fields that failed validation.
type ValidationEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// LoginEnvelope is returned by a successful login.
type LoginEnvelope struct {
	Message   string `json:"message"`
	CSRFToken string `json:"csrfToken"`
}

// CSRFEnvelope carries a freshly issued CSRF token.
type CSRFEnvelope struct {
	CSRFToken string `json:"csrfToken"`
}

// MeEnvelope answers "who am I". User is omitted when unauthenticated.
type MeEnvelope struct {
	Authenticated bool             `json:"authenticated"`
	User          *domain.Identity `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
}

// httpError maps a service error to a response. Wrapped domain sentinels
// become their status with the wrapping text as the message; anything else
// is logged and reported as a bare 500.
func httpError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			writeError(w, s.status, publicMessage(err, s.err))
			return
		}
	}
	log.WithError(err).Error("unhandled error")
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func publicMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

// decodeJSON reads and validates the request body into dst. It writes the
// 400 response itself and returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, ValidationEnvelope{Error: "validation failed", Fields: verr.Fields})
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
