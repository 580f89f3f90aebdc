package licenseserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/license-server/internal/config"
	"github.com/magabrotheeeer/license-server/internal/services/activation"
	"github.com/magabrotheeeer/license-server/internal/services/admin"
	"github.com/magabrotheeeer/license-server/internal/services/entitlement"
	"github.com/magabrotheeeer/license-server/internal/storage/jsonfile"
)

type App struct {
	server *http.Server
	logger *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db := jsonfile.New(cfg.StoragePath, cfg.AdminToken)
	// Первичная инициализация: создаёт файл состояния, если его нет.
	if _, err := db.Load(ctx); err != nil {
		return nil, err
	}

	// Общий мьютекс сериализует цикл load-mutate-save всех сервисов.
	mu := &sync.Mutex{}
	entitlementService := entitlement.New(db, mu, cfg.WindowSeconds, logger)
	activationService := activation.New(db, mu, logger)
	adminService := admin.New(db, mu, cfg.WindowSeconds, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, entitlementService, activationService, adminService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}
