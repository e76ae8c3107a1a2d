// Package emailverify реализует обработчик подтверждения почты по токену
// из письма. Ссылка открывается без авторизации.
package emailverify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	services "github.com/magabrotheeeer/mrtasks/internal/services/profile"
)

// Handler управляет подтверждением почты по токену.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс подтверждения почты.
type Service interface {
	VerifyEmail(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить почту
// @Description Подтверждает почту по токену из письма.
// @Tags Profile
// @Produce  json
// @Param token query string true "Токен подтверждения"
// @Success 200 {object} map[string]any "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Токен не передан"
// @Failure 404 {object} response.ErrorResponse "Токен не найден или уже использован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /email-verify [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.emailverify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("token query parameter is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("error.token.required"))
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			log.Error("verification token not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("error.token.not.found"))
			return
		}
		log.Error("failed to verify email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"verified": true,
	}))
}
