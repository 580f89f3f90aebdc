// Package licenseserver предоставляет маршруты для основного приложения.
package licenseserver

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/license-server/internal/config"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/activate"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/activateuser"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/adjusttime"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/banstate"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/bulkundo"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/bulkzero"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/createkey"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/deletekey"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/editkey"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/overview"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/rename"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/setdevices"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/setunlimited"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/toggle"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/admin/userinfo"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/check"
	"github.com/magabrotheeeer/license-server/internal/http/handlers/health"
	"github.com/magabrotheeeer/license-server/internal/http/middlewarectx"
	activationservice "github.com/magabrotheeeer/license-server/internal/services/activation"
	adminservice "github.com/magabrotheeeer/license-server/internal/services/admin"
	entitlementservice "github.com/magabrotheeeer/license-server/internal/services/entitlement"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, entitlementService *entitlementservice.Service, activationService *activationservice.Service, adminService *adminservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Публичные конечные точки клиентов с ограничением частоты
	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RPS, cfg.Burst))
		r.Get("/check", check.New(logger, entitlementService).ServeHTTP)
		r.Post("/activate/key", activate.New(logger, activationService).ServeHTTP)
	})

	// Административные конечные точки; авторизация по токену внутри сервиса
	r.Route("/admin", func(r chi.Router) {
		r.Post("/toggle", toggle.New(logger, adminService).ServeHTTP)
		r.Post("/create_key", createkey.New(logger, adminService).ServeHTTP)
		r.Post("/delete_key", deletekey.New(logger, adminService).ServeHTTP)
		r.Post("/edit_key", editkey.New(logger, adminService).ServeHTTP)
		r.Post("/activate_id", activateuser.New(logger, adminService).ServeHTTP)
		r.Post("/adjust_time", adjusttime.New(logger, adminService).ServeHTTP)
		r.Post("/set_devices", setdevices.New(logger, adminService).ServeHTTP)
		r.Post("/set_unlimited", setunlimited.New(logger, adminService).ServeHTTP)
		r.Post("/ban", banstate.New(logger, adminService, true).ServeHTTP)
		r.Post("/unban", banstate.New(logger, adminService, false).ServeHTTP)
		r.Post("/rename", rename.New(logger, adminService).ServeHTTP)
		r.Post("/bulk_zero", bulkzero.New(logger, adminService).ServeHTTP)
		r.Post("/bulk_undo", bulkundo.New(logger, adminService).ServeHTTP)
		r.Get("/user", userinfo.New(logger, adminService).ServeHTTP)
		r.Get("/overview", overview.New(logger, adminService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
