// Package setdevices реализует HTTP-обработчик изменения лимита устройств.
package setdevices

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

// Handler обрабатывает запросы изменения лимита устройств.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс изменения лимита устройств.
type Service interface {
	SetDevices(ctx context.Context, token, id string, devices int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Задать лимит устройств пользователя
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param id formData string true "Идентификатор установки"
// @Param devices formData int false "Лимит устройств" default(1)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/set_devices [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setdevices"
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
	devices := form.Int(r, "devices", 1)

	if err := h.service.SetDevices(r.Context(), r.PostFormValue("token"), id, devices); err != nil {
		log.Error("failed to set device limit", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("device limit set", slog.String("user", id), slog.Int("devices", devices))
	render.JSON(w, r, response.OK())
}
