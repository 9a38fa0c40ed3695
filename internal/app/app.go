package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/seastack/hostpanel/internal/config"
	"github.com/seastack/hostpanel/internal/domain"
	"github.com/seastack/hostpanel/internal/handlers"
	"github.com/seastack/hostpanel/internal/provision"
	"github.com/seastack/hostpanel/internal/provision/enhance"
	"github.com/seastack/hostpanel/internal/provision/twentyi"
)

// App represents the application
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	server *http.Server
	router chi.Router
}

// NewManager builds the provisioner registry with every configured vendor
// adapter. Shared between the HTTP server and the CLI.
func NewManager(cfg *config.Config, logger *zap.Logger) *provision.Manager {
	manager := provision.NewManager()
	manager.Register(domain.ProviderEnhance, enhance.New(&cfg.Providers.Enhance, logger.Named("enhance")))
	manager.Register(domain.ProviderTwentyI, twentyi.New(&cfg.Providers.TwentyI, logger.Named("twentyi")))
	return manager
}

// New creates a new application instance
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: log,
	}

	manager := NewManager(cfg, log)

	provisionHandler := handlers.NewProvisionHandler(manager, log)
	healthHandler := handlers.NewHealthHandler(log)

	app.setupRouter(provisionHandler, healthHandler)

	app.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return app, nil
}

// Start starts the application
func (a *App) Start() error {
	a.logger.Info("Starting HTTP server",
		zap.String("addr", a.server.Addr),
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down HTTP server")

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// setupRouter configures the HTTP router
func (a *App) setupRouter(
	provisionHandler *handlers.ProvisionHandler,
	healthHandler *handlers.HealthHandler,
) {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(handlers.SecurityHeadersMiddleware)

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.NewAuthMiddleware(a.cfg.Auth.BearerToken, a.logger))

		r.Route("/providers/{provider}/accounts", func(r chi.Router) {
			r.Post("/", provisionHandler.Create)
			r.Get("/info", provisionHandler.GetInfo)
			r.Get("/usage", provisionHandler.GetUsage)
			r.Get("/login-url", provisionHandler.LoginURL)
			r.Post("/suspend", provisionHandler.Suspend)
			r.Post("/unsuspend", provisionHandler.Unsuspend)
			r.Post("/terminate", provisionHandler.Terminate)
			r.Post("/password", provisionHandler.ChangePassword)
			r.Post("/package", provisionHandler.ChangePackage)
			r.Post("/reseller/grant", provisionHandler.GrantReseller)
			r.Post("/reseller/revoke", provisionHandler.RevokeReseller)
		})
	})

	a.router = r
}
