// Package deletekey реализует HTTP-обработчик удаления ключа.
package deletekey

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы удаления ключа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления ключа.
type Service interface {
	DeleteKey(ctx context.Context, token, code string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить ключ
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param code formData string true "Код ключа"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Failure 404 {object} response.ErrorResponse "Ключ не найден"
// @Router /admin/delete_key [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.deletekey"
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

	if err := h.service.DeleteKey(r.Context(), r.PostFormValue("token"), code); err != nil {
		log.Error("failed to delete key", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("key deleted", slog.String("code", code))
	render.JSON(w, r, response.OK())
}
