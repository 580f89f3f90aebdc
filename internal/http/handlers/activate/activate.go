// Package activate реализует HTTP-обработчик активации по ключу.
//
// Handler принимает JSON-запрос с идентификатором установки, необязательным
// идентификатором устройства и кодом ключа, валидирует его и вызывает движок
// активации. Любой отказ активации (lockdown, неверный формат, использованный
// ключ, бан) возвращается как структурированный результат со статусом 200.
package activate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
	"github.com/magabrotheeeer/license-server/internal/models"
)

// Request тело запроса активации по ключу.
type Request struct {
	ID   string `json:"id" validate:"required"`
	HWID string `json:"hwid"`
	Key  string `json:"key" validate:"required"`
}

// Handler обрабатывает запросы активации по ключу.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс движка активации.
type Service interface {
	Redeem(ctx context.Context, id, hwid, code string) (*models.RedeemResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Активировать ключ
// @Description Активирует ключ для установки. Возвращает результат с сообщением.
// @Tags API
// @Accept json
// @Produce json
// @Param request body Request true "Данные активации"
// @Success 200 {object} models.RedeemResult "Результат активации"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /api/activate/key [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activate"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.Redeem(r.Context(), req.ID, req.HWID, req.Key)
	if err != nil {
		log.Error("failed to redeem key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not redeem key"))
		return
	}

	log.Info("key redemption handled",
		slog.String("id", req.ID),
		slog.Bool("ok", res.OK),
		slog.String("msg", res.Message))
	render.JSON(w, r, res)
}
