// Package editkey реализует HTTP-обработчик правки параметров ключа.
package editkey

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/form"
	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
	"github.com/magabrotheeeer/license-server/internal/services/admin"
)

// Handler обрабатывает запросы правки ключа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс правки ключа.
type Service interface {
	EditKey(ctx context.Context, token, code string, spec admin.KeySpec) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить параметры ключа
// @Description Отметка использования сохраняется: правка не оживляет одноразовый ключ.
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param code formData string true "Код ключа"
// @Param amount formData int false "Количество единиц времени" default(60)
// @Param unit formData string false "Единица: m/h/d/mo" default(m)
// @Param devices formData int false "Лимит устройств" default(1)
// @Param unlimited formData string false "Безлимитный ключ"
// @Param single_use formData string false "Одноразовый ключ"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Failure 404 {object} response.ErrorResponse "Ключ не найден"
// @Router /admin/edit_key [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.editkey"
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
	code := r.PostFormValue("code")
	spec := admin.KeySpec{
		Amount:    form.Int(r, "amount", 60),
		Unit:      r.PostFormValue("unit"),
		Devices:   form.Int(r, "devices", 1),
		Unlimited: form.Bool(r, "unlimited"),
		SingleUse: form.Bool(r, "single_use"),
	}
	if spec.Unit == "" {
		spec.Unit = "m"
	}

	if err := h.service.EditKey(r.Context(), r.PostFormValue("token"), code, spec); err != nil {
		log.Error("failed to edit key", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("key edited", slog.String("code", code))
	render.JSON(w, r, response.OK())
}
