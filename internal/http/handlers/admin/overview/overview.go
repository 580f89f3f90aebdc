// Package overview реализует HTTP-обработчик сводки состояния сервиса:
// глобальные флаги, счётчик онлайна, активные и заблокированные
// пользователи, таблица ключей.
package overview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
	"github.com/magabrotheeeer/license-server/internal/services/admin"
)

// Handler обрабатывает запросы сводки состояния.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс построения сводки.
type Service interface {
	Overview(ctx context.Context, token string) (*admin.Overview, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка состояния сервиса
// @Tags Admin
// @Produce json
// @Param token query string true "Токен администратора"
// @Success 200 {object} admin.Overview
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.overview"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ov, err := h.service.Overview(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		log.Error("failed to build overview", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("overview served", slog.Int("online", ov.Online))
	render.JSON(w, r, ov)
}
