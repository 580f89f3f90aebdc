// Package check реализует HTTP-обработчик проверки доступа клиентского ПО.
//
// Handler принимает идентификатор установки и устройства из строки запроса,
// прогоняет их через движок проверки доступа и возвращает вердикт в
// JSON-формате. Отказ в доступе не является ошибкой транспорта: клиент
// всегда получает 200 и структурированный вердикт.
package check

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

// Handler обрабатывает запросы проверки доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс движка проверки доступа.
type Service interface {
	Check(ctx context.Context, id, hwid string) (*models.Verdict, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить доступ установки
// @Description Возвращает вердикт доступа для пары (id, hwid) и свежий счётчик онлайна.
// @Tags API
// @Produce json
// @Param id query string false "Идентификатор установки"
// @Param hwid query string false "Идентификатор устройства"
// @Success 200 {object} models.Verdict "Вердикт доступа"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /api/check [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.check"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := r.URL.Query().Get("id")
	hwid := r.URL.Query().Get("hwid")

	verdict, err := h.service.Check(r.Context(), id, hwid)
	if err != nil {
		log.Error("failed to check access", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check access"))
		return
	}

	log.Info("access checked",
		slog.String("id", id),
		slog.Bool("ok", verdict.OK),
		slog.Int("online", verdict.Online))
	render.JSON(w, r, verdict)
}
