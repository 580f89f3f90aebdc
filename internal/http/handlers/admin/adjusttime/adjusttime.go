// Package adjusttime реализует HTTP-обработчик прибавления и убавления
// времени подписки.
package adjusttime

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/form"
	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы корректировки времени подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс корректировки времени.
type Service interface {
	AdjustTime(ctx context.Context, token, id string, amount int, unit, direction string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Скорректировать время подписки
// @Description Прибавление идёт поверх max(now, expires_at), убавление не ниже нуля.
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param id formData string true "Идентификатор установки"
// @Param amount formData int false "Количество единиц времени" default(60)
// @Param unit formData string false "Единица: m/h/d/mo" default(m)
// @Param op formData string true "Направление: add или sub"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверная единица или направление"
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/adjust_time [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.adjusttime"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form"))
		return
	}
	id := r.PostFormValue("id")
	unit := r.PostFormValue("unit")
	if unit == "" {
		unit = "m"
	}
	direction := r.PostFormValue("op")

	err := h.service.AdjustTime(r.Context(), r.PostFormValue("token"), id,
		form.Int(r, "amount", 60), unit, direction)
	if err != nil {
		log.Error("failed to adjust time", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("time adjusted", slog.String("user", id), slog.String("direction", direction))
	render.JSON(w, r, response.OK())
}
