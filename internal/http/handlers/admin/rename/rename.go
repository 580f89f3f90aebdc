// Package rename реализует HTTP-обработчик переименования идентификатора
// установки с переносом ссылок в таблице ключей.
package rename

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы переименования пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс переименования пользователя.
type Service interface {
	RenameUser(ctx context.Context, token, oldID, newID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переименовать пользователя
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param old_id formData string true "Текущий идентификатор"
// @Param new_id formData string true "Новый идентификатор"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Пустой новый идентификатор"
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "Идентификатор занят"
// @Router /admin/rename [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.rename"
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
	oldID := r.PostFormValue("old_id")
	newID := r.PostFormValue("new_id")

	if err := h.service.RenameUser(r.Context(), r.PostFormValue("token"), oldID, newID); err != nil {
		log.Error("failed to rename user", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("user renamed", slog.String("old", oldID), slog.String("new", newID))
	render.JSON(w, r, response.OK())
}
