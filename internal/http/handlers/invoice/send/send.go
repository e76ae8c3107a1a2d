// Package send реализует HTTP-обработчик отправки счёта клиенту почтой.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/mrtasks/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mrtasks/internal/http/response"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	services "github.com/magabrotheeeer/mrtasks/internal/services/invoice"
)

// Handler управляет HTTP-запросами на отправку счёта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики отправки счёта.
type Service interface {
	Send(ctx context.Context, userUID, username string, clientID int, ids []int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить счёт клиенту
// @Description Формирует PDF-счёт и ставит письмо клиенту в очередь отправки.
// @Tags Invoices
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyInvoiceSend true "Клиент и выбранные задачи"
// @Success 200 {object} map[string]any "Счёт поставлен в очередь отправки"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или клиент без почты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Почта профиля не подтверждена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или нет оплачиваемых задач"
// @Failure 429 {object} response.ErrorResponse "Превышена часовая квота действия"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отправке счёта"
// @Router /invoices/send [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyInvoiceSend
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

	username, okName := r.Context().Value(middlewarectx.User).(string)
	userUID, okUID := r.Context().Value(middlewarectx.UserUID).(string)
	if !okName || !okUID || username == "" || userUID == "" {
		log.Error("user identification missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("error.unauthorized"))
		return
	}

	if err := h.service.Send(r.Context(), userUID, username, req.ClientID, req.TaskIDs); err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotVerified):
			log.Error("profile email is not verified")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("error.email.unverified"))
		case errors.Is(err, services.ErrClientInvalid):
			log.Error("client not found or has no email", slog.Int("client_id", req.ClientID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("error.client.invalid"))
		case errors.Is(err, services.ErrEmptySelection):
			log.Error("no billable tasks selected")
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("error.invoice.empty"))
		default:
			log.Error("failed to send invoice", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("error.internal"))
		}
		return
	}

	log.Info("invoice queued", slog.Int("client_id", req.ClientID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"queued": true,
	}))
}
