// Package userinfo реализует HTTP-обработчик чтения карточки пользователя.
package userinfo

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
	"github.com/magabrotheeeer/license-server/internal/models"
)

// Handler обрабатывает запросы чтения карточки пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения карточки пользователя.
type Service interface {
	UserInfo(ctx context.Context, token, id string) (*models.UserSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Карточка пользователя
// @Tags Admin
// @Produce json
// @Param token query string true "Токен администратора"
// @Param id query string true "Идентификатор установки"
// @Success 200 {object} models.UserSummary
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userinfo"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := r.URL.Query().Get("id")
	token := r.URL.Query().Get("token")

	sum, err := h.service.UserInfo(r.Context(), token, id)
	if err != nil {
		log.Error("failed to read user info", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("user info served", slog.String("user", id))
	render.JSON(w, r, sum)
}
