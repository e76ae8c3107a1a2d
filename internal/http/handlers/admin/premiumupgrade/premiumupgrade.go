// Package premiumupgrade реализует административный HTTP-обработчик
// включения премиума пользователю. Изменение фиксируется в журнале профиля.
package premiumupgrade

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	"github.com/magabrotheeeer/mrtasks/internal/models"
)

// Handler управляет включением премиума администратором.
type Handler struct {
	log      *slog.Logger
	service  Service
	auditor  Auditor
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики продления подписки.
type Service interface {
	Upgrade(ctx context.Context, userUID string, months int) (time.Time, error)
}

// Auditor дописывает строку в административный журнал профиля.
type Auditor interface {
	AppendAuditNote(ctx context.Context, userUID, note string) error
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, auditor Auditor) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		auditor:  auditor,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Включить премиум пользователю
// @Description Включает премиум на указанное число месяцев от текущего момента.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param useruid path string true "UID пользователя"
// @Param request body models.DummyPremiumUpgrade true "Срок продления"
// @Success 200 {object} map[string]any "Премиум включён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или UID"
// @Failure 403 {object} response.ErrorResponse "Требуется роль admin"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при продлении подписки"
// @Router /admin/premium/{useruid} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.premiumupgrade"
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

	var req models.DummyPremiumUpgrade
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("error.request.invalid"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	expiresAt, err := h.service.Upgrade(r.Context(), userUID, req.Months)
	if err != nil {
		log.Error("failed to upgrade premium", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	note := fmt.Sprintf("premium upgraded for %d months until %s",
		req.Months, expiresAt.Format("2006-01-02"))
	if err := h.auditor.AppendAuditNote(r.Context(), userUID, note); err != nil {
		log.Error("failed to append audit note", sl.Err(err))
	}

	log.Info("premium upgraded",
		slog.String("user_uid", userUID), slog.Int("months", req.Months))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"expires_at": expiresAt,
	}))
}
