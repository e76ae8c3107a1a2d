// Package hide реализует HTTP-обработчики скрытия задачи с доски
// и возврата её обратно. Один Handler обслуживает оба маршрута:
// направление задаётся при создании.
package hide

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
	services "github.com/magabrotheeeer/mrtasks/internal/services/task"
)

// Handler управляет скрытием и возвратом задач на доску.
type Handler struct {
	log     *slog.Logger
	service Service
	hidden  bool // true — скрыть, false — вернуть на доску
}

// Service описывает интерфейс бизнес-логики скрытия задачи.
type Service interface {
	SetHidden(ctx context.Context, id int, userUID string, hidden bool) error
}

// New создает новый Handler. hidden задаёт направление операции.
func New(log *slog.Logger, service Service, hidden bool) *Handler {
	return &Handler{
		log:     log,
		service: service,
		hidden:  hidden,
	}
}

// ServeHTTP godoc
// @Summary Скрыть задачу или вернуть её на доску
// @Description Помечает задачу скрытой либо снимает отметку, в зависимости от маршрута.
// @Tags Tasks
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID задачи"
// @Success 200 {object} map[string]any "Состояние задачи изменено"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Задача не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tasks/{id}/hide [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.task.hide"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid task id", sl.Err(err))
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

	if err := h.service.SetHidden(r.Context(), id, userUID, h.hidden); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			log.Error("task not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("error.task.not.found"))
			return
		}
		log.Error("failed to change task visibility", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	log.Info("task visibility changed",
		slog.Int("id", id), slog.Bool("hidden", h.hidden))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"hidden": h.hidden,
	}))
}
