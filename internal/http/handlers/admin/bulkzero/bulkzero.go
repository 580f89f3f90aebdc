// Package bulkzero реализует HTTP-обработчик массового обнуления подписок.
// Операция требует литерал подтверждения и предварительно снимает
// резервную копию для последующего отката.
package bulkzero

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы массового обнуления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс массового обнуления.
type Service interface {
	BulkZero(ctx context.Context, token, confirm string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Обнулить подписки всех пользователей
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param confirm formData string true "Литерал подтверждения ZERO-ALL"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Подтверждение не совпало"
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/bulk_zero [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.bulkzero"
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

	affected, err := h.service.BulkZero(r.Context(), r.PostFormValue("token"), r.PostFormValue("confirm"))
	if err != nil {
		log.Error("failed to bulk zero", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("bulk zero applied", slog.Int("affected", affected))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"affected": affected,
	}))
}
