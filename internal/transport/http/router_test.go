package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/config"
	"github.com/fawziabuhussin/task-manager-api/internal/infrastructure/memory"
	jwtinfra "github.com/fawziabuhussin/task-manager-api/internal/infrastructure/jwt"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/hash"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testApp struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
	clock   *fakeClock
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T, env string) *testApp {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	jwtProvider, err := jwtinfra.NewProvider("test-secret", 2*time.Hour, clock.Now)
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	store := memory.NewStore()

	cfg := &config.Config{
		AppEnv:             env,
		MailDriver:         config.MailOutbox,
		AllowedOrigins:     []string{"http://localhost:5173"},
		LoginRatePerMinute: 10,
	}
	h := NewRouter(ctx, cfg, &Deps{
		AccountRepo:      store.Accounts(),
		VerificationRepo: store.Verifications(),
		TaskRepo:         store.Tasks(),
		OutboxRepo:       store.Outbox(),
		JWTProvider:      jwtProvider,
		Hasher:           hash.New(4),
		Logger:           log,
		Now:              clock.Now,
	})
	return &testApp{t: t, handler: h, store: store, clock: clock, cookies: map[string]*http.Cookie{}}
}

// do sends a request carrying the cookies collected so far. When withCSRF is
// set, the csrfToken cookie value is echoed in the x-csrf-token header.
func (a *testApp) do(method, path, body string, withCSRF bool) *httptest.ResponseRecorder {
	a.t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for _, c := range a.cookies {
		r.AddCookie(c)
	}
	if withCSRF {
		if c, ok := a.cookies["csrfToken"]; ok {
			r.Header.Set("x-csrf-token", c.Value)
		}
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, r)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
			continue
		}
		a.cookies[c.Name] = c
	}
	return rr
}

// latestCode reads the most recent verification code from the outbox.
func (a *testApp) latestCode() string {
	a.t.Helper()
	emails, err := a.store.Outbox().ListRecent(context.Background(), 1)
	require.NoError(a.t, err)
	require.Len(a.t, emails, 1)
	code := strings.TrimPrefix(emails[0].Body, "Your code is: ")
	require.Len(a.t, code, 6)
	return code
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

const creds = `{"email":"alice@example.com","password":"password1"}`

func signupAndVerify(t *testing.T, a *testApp) {
	t.Helper()
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/auth/signup", creds, false).Code)
	rr := a.do(http.MethodPost, "/api/auth/verify", `{"email":"alice@example.com","code":"`+a.latestCode()+`"}`, false)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_VerificationThrottle(t *testing.T) {
	a := newTestApp(t, "production")

	rr := a.do(http.MethodPost, "/api/auth/signup", creds, false)
	require.Equal(t, http.StatusCreated, rr.Code)
	code := a.latestCode()

	rr = a.do(http.MethodPost, "/api/auth/signup", creds, false)
	assert.Equal(t, http.StatusConflict, rr.Code)

	for i := 0; i < 5; i++ {
		rr = a.do(http.MethodPost, "/api/auth/verify", `{"email":"alice@example.com","code":"`+wrongCode(code)+`"}`, false)
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid code", decodeBody(t, rr)["error"])
	}

	// Sixth attempt inside the window is refused even with the right code.
	rr = a.do(http.MethodPost, "/api/auth/verify", `{"email":"alice@example.com","code":"`+code+`"}`, false)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	a.clock.Advance(61 * time.Second)
	rr = a.do(http.MethodPost, "/api/auth/verify", `{"email":"alice@example.com","code":"`+code+`"}`, false)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = a.do(http.MethodPost, "/api/auth/resend", `{"email":"alice@example.com"}`, false)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRouter_ExpiredCode(t *testing.T) {
	a := newTestApp(t, "production")
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/auth/signup", creds, false).Code)
	code := a.latestCode()

	a.clock.Advance(16 * time.Minute)
	rr := a.do(http.MethodPost, "/api/auth/verify", `{"email":"alice@example.com","code":"`+code+`"}`, false)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Code expired", decodeBody(t, rr)["error"])

	// A resent code supersedes the expired one.
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/auth/resend", `{"email":"alice@example.com"}`, false).Code)
	rr = a.do(http.MethodPost, "/api/auth/verify", `{"email":"alice@example.com","code":"`+a.latestCode()+`"}`, false)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_LoginRequiresVerification(t *testing.T) {
	a := newTestApp(t, "production")
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/auth/signup", creds, false).Code)

	rr := a.do(http.MethodPost, "/api/auth/login", creds, false)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Email not verified.", decodeBody(t, rr)["error"])
}

func TestRouter_LockoutAndSession(t *testing.T) {
	a := newTestApp(t, "production")
	signupAndVerify(t, a)

	bad := `{"email":"alice@example.com","password":"wrong-password"}`
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", bad, false).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", bad, false).Code)
	rr := a.do(http.MethodPost, "/api/auth/login", bad, false)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Too many attempts. Locked until 2025-03-01T12:02:00.000Z", decodeBody(t, rr)["error"])

	// Correct password is refused while locked.
	rr = a.do(http.MethodPost, "/api/auth/login", creds, false)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "Account locked. Try after")

	a.clock.Advance(2*time.Minute + time.Second)
	rr = a.do(http.MethodPost, "/api/auth/login", creds, false)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Logged in", body["message"])
	require.Contains(t, a.cookies, "accessToken")
	require.Contains(t, a.cookies, "csrfToken")
	assert.Equal(t, a.cookies["csrfToken"].Value, body["csrfToken"])

	rr = a.do(http.MethodGet, "/api/auth/me", "", false)
	me := decodeBody(t, rr)
	assert.Equal(t, true, me["authenticated"])
	assert.Equal(t, "alice@example.com", me["user"].(map[string]interface{})["email"])

	// Tokens expire after two hours.
	a.clock.Advance(2*time.Hour + time.Second)
	rr = a.do(http.MethodGet, "/api/auth/me", "", false)
	assert.JSONEq(t, `{"authenticated":false}`, rr.Body.String())
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/tasks", "", false).Code)
}

func TestRouter_TasksBehindAuthAndCSRF(t *testing.T) {
	a := newTestApp(t, "production")
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/tasks", "", false).Code)

	signupAndVerify(t, a)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/auth/login", creds, false).Code)

	rr := a.do(http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`, false)
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Invalid CSRF token", decodeBody(t, rr)["error"])

	rr = a.do(http.MethodPost, "/api/tasks", `{"title":"Buy milk","dueDate":"2025-03-02T09:00:00Z"}`, true)
	require.Equal(t, http.StatusCreated, rr.Code)
	id, _ := decodeBody(t, rr)["id"].(string)
	require.NotEmpty(t, id)

	rr = a.do(http.MethodGet, "/api/tasks?search=MILK", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(1), decodeBody(t, rr)["total"])

	rr = a.do(http.MethodPut, "/api/tasks/"+id, `{"done":true}`, true)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["done"])

	// A refreshed CSRF token replaces the old one.
	rr = a.do(http.MethodGet, "/api/auth/csrf", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, a.cookies["csrfToken"].Value, decodeBody(t, rr)["csrfToken"])

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/tasks/"+id, "", true).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/tasks/"+id, "", false).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/auth/logout", "", false).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/api/auth/logout", "", true).Code)
	assert.NotContains(t, a.cookies, "accessToken")
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/tasks", "", false).Code)
}

func TestRouter_DevRoutesOnlyInDevelopment(t *testing.T) {
	prod := newTestApp(t, "production")
	assert.Equal(t, http.StatusNotFound, prod.do(http.MethodGet, "/api/dev/mailbox", "", false).Code)

	dev := newTestApp(t, "development")
	require.Equal(t, http.StatusCreated, dev.do(http.MethodPost, "/api/auth/signup", creds, false).Code)
	rr := dev.do(http.MethodGet, "/api/dev/mailbox", "", false)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Your verification code")
}

func TestRouter_DevRoutesNeedOutboxMail(t *testing.T) {
	a := newTestApp(t, "development")
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a.handler = NewRouter(ctx, &config.Config{
		AppEnv:     "development",
		MailDriver: config.MailSMTP,
	}, &Deps{
		AccountRepo:      a.store.Accounts(),
		VerificationRepo: a.store.Verifications(),
		TaskRepo:         a.store.Tasks(),
		OutboxRepo:       a.store.Outbox(),
		JWTProvider:      mustProvider(t, a.clock),
		Hasher:           hash.New(4),
	})
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/dev/mailbox", "", false).Code)
}

func TestRouter_LoginLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	a := newTestApp(t, "production")
	codes := make([]int, 0, 11)
	for i := 0; i < 11; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(creds))
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rr := httptest.NewRecorder()
		a.handler.ServeHTTP(rr, r)
		codes = append(codes, rr.Code)
	}
	assert.NotContains(t, codes[:10], http.StatusTooManyRequests)
	assert.Equal(t, http.StatusTooManyRequests, codes[10])
}

func mustProvider(t *testing.T, clock *fakeClock) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider("test-secret", 2*time.Hour, clock.Now)
	require.NoError(t, err)
	return p
}

func TestRouter_Health(t *testing.T) {
	a := newTestApp(t, "production")
	rr := a.do(http.MethodGet, "/health", "", false)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}
