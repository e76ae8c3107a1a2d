// Package userdetail реализует административный HTTP-обработчик
// карточки пользователя: учётная запись и состояние подписки.
package userdetail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// Handler управляет карточкой пользователя для администратора.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики карточки пользователя.
type Service interface {
	UserDetail(ctx context.Context, userUID string) (*models.User, *models.Subscription, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Карточка пользователя
// @Description Возвращает данные пользователя и его премиум-статус.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param useruid path string true "UID пользователя"
// @Success 200 {object} map[string]any "Карточка пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный UID"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при получении пользователя"
// @Router /admin/users/{useruid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userdetail"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "useruid")
	if _, err := uuid.Parse(userUID); err != nil {
		log.Error("invalid user uid", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("error.useruid.invalid"))
		return
	}

	user, sub, active, err := h.service.UserDetail(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("user not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("error.user.not.found"))
			return
		}
		log.Error("failed to get user detail", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	log.Info("user detail served", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":         user,
		"subscription": sub,
		"is_premium":   active,
	}))
}
