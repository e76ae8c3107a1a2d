package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mrtasks/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/ratelimit"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*models.User, bool, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	validUser := &models.User{
		UUID:     "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d",
		Username: "testuser",
		Role:     "user",
	}

	tests := []struct {
		name           string
		authHeader     string
		mockUser       *models.User
		mockValid      bool
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token malformed"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token invalid",
			authHeader:     "Bearer token",
			mockUser:       validUser,
			mockValid:      false,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockUser:       validUser,
			mockValid:      true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			if tt.authHeader != "" && tt.authHeader != "Basic sometoken" {
				authMock.On("ValidateToken", mock.Anything, mock.Anything).
					Return(tt.mockUser, tt.mockValid, tt.mockErr).Once()
			}

			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
				assert.Equal(t, "user", r.Context().Value(middlewarectx.Role))
				assert.Equal(t, validUser.UUID, r.Context().Value(middlewarectx.UserUID))
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.JWTMiddleware(authMock, newNoopLogger())(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		wantStatusCode int
		wantCalled     bool
	}{
		{name: "admin passes", role: "admin", wantStatusCode: http.StatusOK, wantCalled: true},
		{name: "user denied", role: "user", wantStatusCode: http.StatusForbidden},
		{name: "missing role denied", role: nil, wantStatusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middlewarectx.AdminOnlyMiddleware(newNoopLogger())(nextHandler)

			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(),
					middlewarectx.Role, tt.role))
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestActionLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewViolationLog())
	mw := middlewarectx.ActionLimitMiddleware(limiter, ratelimit.ActionEmailChange,
		newNoopLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(username string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/profile/email", nil)
		req.RemoteAddr = "10.0.0.1:51000"
		if username != "" {
			req = req.WithContext(context.WithValue(req.Context(),
				middlewarectx.User, username))
		}
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		return w
	}

	// Квота email-change — три попытки в час.
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("alice").Code)
	}

	denied := do("alice")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)
	// Тело отказа несёт ключ каталога сообщений, а не готовую фразу.
	assert.Contains(t, denied.Body.String(), `"error":"error.rate.limit.email.change"`)

	assert.Equal(t, http.StatusOK, do("bob").Code, "quota is per user")
	assert.Equal(t, http.StatusUnauthorized, do("").Code, "username is required in context")
}
