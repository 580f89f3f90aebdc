// Package bulkundo реализует HTTP-обработчик отката массового обнуления
// из последней резервной копии.
package bulkundo

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы отката массового обнуления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс отката из резервной копии.
type Service interface {
	BulkUndo(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Откатить массовое обнуление
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Failure 404 {object} response.ErrorResponse "Резервной копии нет"
// @Router /admin/bulk_undo [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.bulkundo"
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

	if err := h.service.BulkUndo(r.Context(), r.PostFormValue("token")); err != nil {
		log.Error("failed to bulk undo", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("bulk undo applied")
	render.JSON(w, r, response.OK())
}
