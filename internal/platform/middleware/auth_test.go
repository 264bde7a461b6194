package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// stubValidator returns canned claims or an error.
type stubValidator struct {
	claims *Claims
	err    error
}

func (s *stubValidator) ValidateToken(string) (*Claims, error) {
	return s.claims, s.err
}

// captureHandler records whether it was called and with which context.
type captureHandler struct {
	called  bool
	context context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareSuite struct {
	suite.Suite
	logger *slog.Logger
	next   *captureHandler
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.next = &captureHandler{}
}

func (s *AuthMiddlewareSuite) serve(validator TokenValidator, authHeader string) *httptest.ResponseRecorder {
	mw := RequireAuth(validator, s.logger)
	req := httptest.NewRequest(http.MethodGet, "/verification/status", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	mw(s.next).ServeHTTP(rec, req)
	return rec
}

func (s *AuthMiddlewareSuite) TestValidTokenStoresIdentity() {
	validator := &stubValidator{claims: &Claims{UserID: "user-1", Role: "customer"}}
	rec := s.serve(validator, "Bearer valid-token")

	s.Equal(http.StatusOK, rec.Code)
	s.True(s.next.called)
	s.Equal("user-1", GetUserID(s.next.context))
	s.Equal("customer", GetRole(s.next.context))
}

func (s *AuthMiddlewareSuite) TestMissingHeaderRejected() {
	rec := s.serve(&stubValidator{}, "")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(s.next.called)
}

func (s *AuthMiddlewareSuite) TestNonBearerHeaderRejected() {
	rec := s.serve(&stubValidator{}, "Basic dXNlcjpwYXNz")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(s.next.called)
}

func (s *AuthMiddlewareSuite) TestInvalidTokenRejected() {
	validator := &stubValidator{err: errors.New("expired")}
	rec := s.serve(validator, "Bearer bad-token")
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(s.next.called)
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		role       string
		wantStatus int
		wantCalled bool
	}{
		{name: "admin role passes", role: RoleAdmin, wantStatus: http.StatusOK, wantCalled: true},
		{name: "customer role forbidden", role: "customer", wantStatus: http.StatusForbidden},
		{name: "missing role forbidden", role: "", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &captureHandler{}
			req := httptest.NewRequest(http.MethodGet, "/admin/verification/pending", nil)
			ctx := context.WithValue(req.Context(), ContextKeyUserID, "user-1")
			if tt.role != "" {
				ctx = context.WithValue(ctx, ContextKeyRole, tt.role)
			}
			rec := httptest.NewRecorder()

			RequireAdmin(logger)(next).ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, next.called)
		})
	}
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	next := &captureHandler{}
	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), GetRequestID(next.context))
}

func TestRequestIDKeepsClientProvided(t *testing.T) {
	next := &captureHandler{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)

	assert.Equal(t, "client-id-123", GetRequestID(next.context))
}
