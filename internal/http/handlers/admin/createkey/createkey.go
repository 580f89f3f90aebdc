// Package createkey реализует HTTP-обработчик пакетного создания ключей.
//
// Поле codes принимает кандидатов, разделённых пробелами или запятыми;
// пустое поле порождает ровно один сгенерированный код. Невалидные
// кандидаты в пакете пропускаются сервисом.
package createkey

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/license-server/internal/http/form"
	"github.com/magabrotheeeer/license-server/internal/http/response"
	"github.com/magabrotheeeer/license-server/internal/lib/sl"
	"github.com/magabrotheeeer/license-server/internal/services/admin"
)

// Handler обрабатывает запросы создания ключей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс создания ключей.
type Service interface {
	CreateKeys(ctx context.Context, token string, codes []string, spec admin.KeySpec) ([]string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// splitCodes разбирает поле codes: запятые приравниваются к пробелам.
func splitCodes(raw string) []string {
	return strings.Fields(strings.ReplaceAll(raw, ",", " "))
}

// ServeHTTP godoc
// @Summary Создать пакет ключей
// @Tags Admin
// @Accept x-www-form-urlencoded
// @Produce json
// @Param token formData string true "Токен администратора"
// @Param codes formData string false "Коды через пробел или запятую; пусто — сгенерировать"
// @Param amount formData int false "Количество единиц времени" default(60)
// @Param unit formData string false "Единица: m/h/d/mo" default(m)
// @Param devices formData int false "Лимит устройств" default(1)
// @Param unlimited formData string false "Безлимитный ключ"
// @Param single_use formData string false "Одноразовый ключ"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неверная единица или все коды невалидны"
// @Failure 403 {object} response.ErrorResponse "Неверный токен"
// @Router /admin/create_key [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.createkey"
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

	codes := splitCodes(r.PostFormValue("codes"))
	spec := admin.KeySpec{
		Amount:    form.Int(r, "amount", 60),
		Unit:      r.PostFormValue("unit"),
		Devices:   form.Int(r, "devices", 1),
		Unlimited: form.Bool(r, "unlimited"),
		SingleUse: form.Bool(r, "single_use"),
	}
	if spec.Unit == "" {
		spec.Unit = "m"
	}

	created, err := h.service.CreateKeys(r.Context(), r.PostFormValue("token"), codes, spec)
	if err != nil {
		log.Error("failed to create keys", sl.Err(err))
		code, resp := response.DomainError(err)
		w.WriteHeader(code)
		render.JSON(w, r, resp)
		return
	}

	log.Info("keys created", slog.Int("count", len(created)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"created": created,
	}))
}
