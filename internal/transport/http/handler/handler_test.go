package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/fawziabuhussin/task-manager-api/internal/application/session"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Signup(ctx context.Context, req domain.SignupRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthSvc) Verify(ctx context.Context, req domain.VerifyRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthSvc) ResendCode(ctx context.Context, req domain.ResendCodeRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) Login(ctx context.Context, req domain.LoginRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionSvc) Resolve(ctx context.Context, token string) (*domain.Identity, bool) {
	args := m.Called(ctx, token)
	id, _ := args.Get(0).(*domain.Identity)
	return id, args.Bool(1)
}
func (m *mockSessionSvc) IssueCSRF() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// --- helpers ---

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func jsonReq(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
