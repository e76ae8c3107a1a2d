package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mrtasks/internal/http/middlewarectx"
	services "github.com/magabrotheeeer/mrtasks/internal/services/task"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Remove(ctx context.Context, id int, userUID string) error {
	args := m.Called(ctx, id, userUID)
	return args.Error(0)
}

const testUserUID = "7d0f95a2-6f3b-4e1c-bb0a-2c9d8e7f6a5b"

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		taskID         string
		withAuth       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное удаление",
			taskID:   "7",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, 7, testUserUID).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted_id":7`,
		},
		{
			name:           "некорректный id",
			taskID:         "abc",
			withAuth:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"error.id.invalid"`,
		},
		{
			name:           "нет пользователя в контексте",
			taskID:         "7",
			withAuth:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"error.unauthorized"`,
		},
		{
			name:     "задача не найдена",
			taskID:   "99",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, 99, testUserUID).
					Return(services.ErrTaskNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"error.task.not.found"`,
		},
		{
			name:     "ошибка сервиса",
			taskID:   "7",
			withAuth: true,
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, 7, testUserUID).
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

			req := httptest.NewRequest(http.MethodDelete, "/tasks/"+tt.taskID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.taskID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			if tt.withAuth {
				req = req.WithContext(context.WithValue(req.Context(),
					middlewarectx.UserUID, testUserUID))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
