// Package premiumdowngrade реализует административный HTTP-обработчик
// отключения премиума. Изменение фиксируется в журнале профиля.
package premiumdowngrade

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
)

// Handler управляет отключением премиума администратором.
type Handler struct {
	log     *slog.Logger
	service Service
	auditor Auditor
}

// Service описывает интерфейс бизнес-логики отключения подписки.
type Service interface {
	Downgrade(ctx context.Context, userUID string) error
}

// Auditor дописывает строку в административный журнал профиля.
type Auditor interface {
	AppendAuditNote(ctx context.Context, userUID, note string) error
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, auditor Auditor) *Handler {
	return &Handler{
		log:     log,
		service: service,
		auditor: auditor,
	}
}

// ServeHTTP godoc
// @Summary Отключить премиум пользователю
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param useruid path string true "UID пользователя"
// @Success 200 {object} map[string]any "Премиум отключён"
// @Failure 400 {object} response.ErrorResponse "Некорректный UID"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отключении подписки"
// @Router /admin/premium/{useruid} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.premiumdowngrade"
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

	if err := h.service.Downgrade(r.Context(), userUID); err != nil {
		log.Error("failed to downgrade premium", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	if err := h.auditor.AppendAuditNote(r.Context(), userUID, "premium downgraded"); err != nil {
		log.Error("failed to append audit note", sl.Err(err))
	}

	log.Info("premium downgraded", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"premium": false,
	}))
}
