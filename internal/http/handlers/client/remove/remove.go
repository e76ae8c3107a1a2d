// Package remove реализует HTTP-обработчик удаления клиента.
// Клиент с привязанными задачами не удаляется: возвращается 409.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mrtasks/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	services "github.com/magabrotheeeer/mrtasks/internal/services/client"
)

// Handler управляет HTTP-запросами на удаление клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления клиента.
type Service interface {
	Remove(ctx context.Context, id int, userUID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить клиента
// @Description Удаляет клиента пользователя по ID. Клиент с задачами не удаляется.
// @Tags Clients
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID клиента"
// @Success 200 {object} map[string]any "Клиент удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "На клиента ссылаются задачи"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении клиента"
// @Router /clients/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid client id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("error.id.invalid"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("error.unauthorized"))
		return
	}

	if err := h.service.Remove(r.Context(), id, userUID); err != nil {
		switch {
		case errors.Is(err, services.ErrClientNotFound):
			log.Error("client not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("error.client.not.found"))
		case errors.Is(err, services.ErrClientHasTasks):
			log.Error("client has tasks", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("error.client.has.tasks"))
		default:
			log.Error("failed to remove client", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("error.internal"))
		}
		return
	}

	log.Info("client removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_id": id,
	}))
}
