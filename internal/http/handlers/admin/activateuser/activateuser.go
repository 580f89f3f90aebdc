// Package activateuser реализует HTTP-обработчик прямой выдачи подписки
// по идентификатору установки, без ключа.
package activateuser

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

// Handler обрабатывает запросы прямой активации пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс прямой активации.
type Service interface {
	ActivateUser(ctx context.Context, token, id string, amount int, unit string, devices int, unlimited bool) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выдать подписку напрямую
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param id formData string true "Идентификатор установки"
// @Param amount formData int false "Количество единиц времени" default(60)
// @Param unit formData string false "Единица: m/h/d/mo" default(m)
// @Param devices formData int false "Лимит устройств" default(1)
// @Param unlimited formData string false "Безлимитный доступ"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверная единица"
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/activate_id [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.activateuser"
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

	err := h.service.ActivateUser(r.Context(), r.PostFormValue("token"), id,
		form.Int(r, "amount", 60), unit, form.Int(r, "devices", 1), form.Bool(r, "unlimited"))
	if err != nil {
		log.Error("failed to activate user", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("user activated", slog.String("user", id))
	render.JSON(w, r, response.OK())
}
