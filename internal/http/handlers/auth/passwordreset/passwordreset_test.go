package passwordreset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/mrtasks/internal/services/profile"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ResetPassword(ctx context.Context, token, password string) error {
	return m.Called(ctx, token, password).Error(0)
}

func TestPasswordResetHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная смена пароля",
			body: `{"token":"reset-tok-42","password":"newsecret42"}`,
			setupMock: func(m *MockService) {
				m.On("ResetPassword", mock.Anything, "reset-tok-42", "newsecret42").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"reset":true`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"token":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"error.request.invalid"`,
		},
		{
			name:           "короткий пароль",
			body:           `{"token":"reset-tok-42","password":"short"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password`,
		},
		{
			name: "неизвестный токен",
			body: `{"token":"stale","password":"newsecret42"}`,
			setupMock: func(m *MockService) {
				m.On("ResetPassword", mock.Anything, "stale", "newsecret42").
					Return(services.ErrResetTokenNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"error.token.not.found"`,
		},
		{
			name: "ошибка сервиса",
			body: `{"token":"reset-tok-42","password":"newsecret42"}`,
			setupMock: func(m *MockService) {
				m.On("ResetPassword", mock.Anything, "reset-tok-42", "newsecret42").
					Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"error.internal"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/password-reset",
				strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
