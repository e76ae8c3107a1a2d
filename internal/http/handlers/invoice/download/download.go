// Package download реализует HTTP-обработчик формирования PDF-счёта
// по выбранным задачам. Ответ отдаётся файлом, а не JSON-обёрткой.
package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// Handler управляет HTTP-запросами на формирование счёта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики формирования счёта.
type Service interface {
	Render(ctx context.Context, userUID, username string, ids []int) (*services.Invoice, error)
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
// @Summary Скачать счёт
// @Description Формирует PDF-счёт по выбранным задачам и отдаёт его файлом.
// @Tags Invoices
// @Accept  json
// @Produce  application/pdf
// @Security BearerAuth
// @Param request body models.DummyInvoiceDownload true "Выбранные задачи"
// @Success 200 {file} binary "PDF-счёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или нет оплачиваемых задач"
// @Failure 429 {object} response.ErrorResponse "Превышена часовая квота действия"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при формировании счёта"
// @Router /invoices/download [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.download"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyInvoiceDownload
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

	invoice, err := h.service.Render(r.Context(), userUID, username, req.TaskIDs)
	if err != nil {
		if errors.Is(err, services.ErrEmptySelection) {
			log.Error("no billable tasks selected")
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("error.invoice.empty"))
			return
		}
		log.Error("failed to render invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("error.internal"))
		return
	}

	log.Info("invoice rendered", slog.String("number", invoice.Number))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", invoice.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(invoice.PDF); err != nil {
		log.Error("failed to write invoice body", sl.Err(err))
	}
}
