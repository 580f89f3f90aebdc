// Package banstate реализует HTTP-обработчик блокировки и разблокировки
// пользователя. Один и тот же Handler обслуживает оба маршрута:
// целевое значение флага задаётся при конструировании.
package banstate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы блокировки или разблокировки.
type Handler struct {
	log     *slog.Logger
	service Service
	banned  bool
}

// Service описывает интерфейс изменения флага блокировки.
type Service interface {
	SetBanned(ctx context.Context, token, id string, banned bool) error
}

// New создает новый Handler. banned — значение, которое обработчик
// будет выставлять пользователю.
func New(log *slog.Logger, service Service, banned bool) *Handler {
	return &Handler{
		log:     log,
		service: service,
		banned:  banned,
	}
}

// ServeHTTP godoc
// @Summary Заблокировать или разблокировать пользователя
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param id formData string true "Идентификатор установки"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/ban [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.banstate"
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

	if err := h.service.SetBanned(r.Context(), r.PostFormValue("token"), id, h.banned); err != nil {
		log.Error("failed to set ban flag", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("ban flag set", slog.String("user", id), slog.Bool("banned", h.banned))
	render.JSON(w, r, response.OK())
}
