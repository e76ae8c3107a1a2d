package passwordforgot

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
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func TestPasswordForgotHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный запрос",
			body: `{"email":"alice@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("ForgotPassword", mock.Anything, "alice@example.com").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"accepted":true`,
		},
		{
			name: "незарегистрированная почта выглядит так же",
			body: `{"email":"ghost@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("ForgotPassword", mock.Anything, "ghost@example.com").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"accepted":true`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"error.request.invalid"`,
		},
		{
			name:           "не почта",
			body:           `{"email":"not-an-email"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email address`,
		},
		{
			name: "ошибка сервиса",
			body: `{"email":"alice@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("ForgotPassword", mock.Anything, "alice@example.com").
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

			req := httptest.NewRequest(http.MethodPost, "/password-forgot",
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
