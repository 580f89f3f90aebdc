// Package toggle реализует HTTP-обработчик переключения глобальных
// режимов: бесплатного доступа и полного запрета (lockdown).
package toggle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
)

// Handler обрабатывает запросы переключения глобальных режимов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс административных переключателей.
type Service interface {
	ToggleFree(ctx context.Context, token string) (bool, error)
	ToggleLockdown(ctx context.Context, token string) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переключить глобальный режим
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param what formData string true "Режим: free или lock"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/toggle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.toggle"
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
	token := r.PostFormValue("token")
	what := r.PostFormValue("what")

	var (
		enabled bool
		err     error
	)
	switch what {
	case "free":
		enabled, err = h.service.ToggleFree(r.Context(), token)
	case "lock":
		enabled, err = h.service.ToggleLockdown(r.Context(), token)
	default:
		log.Error("unknown toggle target", slog.String("what", what))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown toggle target"))
		return
	}
	if err != nil {
		log.Error("failed to toggle mode", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("mode toggled", slog.String("what", what), slog.Bool("enabled", enabled))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"what":    what,
		"enabled": enabled,
	}))
}
