// Package search реализует HTTP-обработчик поиска клиентов по подстроке
// в имени или названии компании.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mrtasks/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	"github.com/magabrotheeeer/mrtasks/internal/models"
)

// Handler управляет HTTP-запросами на поиск клиентов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики поиска клиентов.
type Service interface {
	Search(ctx context.Context, userUID, substring string) ([]*models.Client, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Найти клиентов
// @Description Ищет клиентов пользователя по подстроке в имени или компании.
// @Tags Clients
// @Produce  json
// @Security BearerAuth
// @Param q query string true "Подстрока поиска"
// @Success 200 {object} map[string]any "Найденные клиенты"
// @Failure 400 {object} response.ErrorResponse "Пустой запрос поиска"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 429 {object} response.ErrorResponse "Превышена часовая квота действия"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при поиске"
// @Router /clients/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	substring := r.URL.Query().Get("q")
	if substring == "" {
		log.Error("empty search query")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("error.query.required"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("error.unauthorized"))
		return
	}

	clients, err := h.service.Search(r.Context(), userUID, substring)
	if err != nil {
		log.Error("failed to search clients", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	log.Info("clients searched", slog.Int("count", len(clients)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"clients": clients,
	}))
}
