package handler

import (
	"net/http"

	"github.com/fawziabuhussin/task-manager-api/internal/application/auth"
	"github.com/fawziabuhussin/task-manager-api/internal/application/session"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/fawziabuhussin/task-manager-api/internal/transport/http/middleware"
	"github.com/sirupsen/logrus"
)

// AuthHandler serves signup, verification and the session endpoints under /api/auth.
type AuthHandler struct {
	auth     auth.Service
	sessions session.Service
	cookies  CookieConfig
	log      logrus.FieldLogger
}

func NewAuthHandler(authSvc auth.Service, sessionSvc session.Service, cookies CookieConfig, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: authSvc, sessions: sessionSvc, cookies: cookies, log: log}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.auth.Signup(r.Context(), req); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Signup successful. Check your email for the verification code."})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.auth.Verify(r.Context(), req); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified. You can log in now."})
}

func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.auth.ResendCode(r.Context(), req); err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent."})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	h.cookies.setSession(w, res.AccessToken, res.CSRFToken)
	writeJSON(w, http.StatusOK, LoginEnvelope{Message: "Logged in", CSRFToken: res.CSRFToken})
}

// Logout clears both cookies. The route is behind the CSRF gate.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.cookies.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(middleware.AccessTokenCookie); err == nil {
		token = c.Value
	}
	id, ok := h.sessions.Resolve(r.Context(), token)
	if !ok {
		writeJSON(w, http.StatusOK, MeEnvelope{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, MeEnvelope{Authenticated: true, User: id})
}

func (h *AuthHandler) CSRF(w http.ResponseWriter, _ *http.Request) {
	tok, err := h.sessions.IssueCSRF()
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	h.cookies.setCSRF(w, tok)
	writeJSON(w, http.StatusOK, CSRFEnvelope{CSRFToken: tok})
}
