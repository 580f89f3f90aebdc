// Package setunlimited реализует HTTP-обработчик включения и выключения
// безлимитного доступа пользователя.
package setunlimited

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

// Handler обрабатывает запросы изменения безлимитного доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс изменения безлимитного доступа.
type Service interface {
	SetUnlimited(ctx context.Context, token, id string, unlimited bool) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Включить или выключить безлимит
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param id formData string true "Идентификатор установки"
// @Param unlimited formData string false "true — включить, false — выключить"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/set_unlimited [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setunlimited"
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
	unlimited := form.Bool(r, "unlimited")

	if err := h.service.SetUnlimited(r.Context(), r.PostFormValue("token"), id, unlimited); err != nil {
		log.Error("failed to set unlimited flag", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("unlimited flag set", slog.String("user", id), slog.Bool("unlimited", unlimited))
	render.JSON(w, r, response.OK())
}
