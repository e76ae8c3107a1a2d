package remove

import (
	"context"
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
	services "github.com/magabrotheeeer/mrtasks/internal/services/client"
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
		clientID       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное удаление",
			clientID: "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, 3, testUserUID).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"deleted_id":3`,
		},
		{
			name:     "клиент не найден",
			clientID: "42",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, 42, testUserUID).
					Return(services.ErrClientNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"error.client.not.found"`,
		},
		{
			name:     "у клиента есть задачи",
			clientID: "3",
			setupMock: func(m *MockService) {
				m.On("Remove", mock.Anything, 3, testUserUID).
					Return(services.ErrClientHasTasks)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"error.client.has.tasks"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/clients/"+tt.clientID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.clientID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			req = req.WithContext(context.WithValue(req.Context(),
				middlewarectx.UserUID, testUserUID))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
