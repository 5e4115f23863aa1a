package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beaconworks/kb-chat-api/config"
	httpx "github.com/beaconworks/kb-chat-api/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(routerServices(appCfg, cfg.Services, logger))

	return startServer(logger, handler, appCfg.HTTP.Addr)
}

// routerServices maps the container onto the router wiring. Nil container
// slots must stay nil interfaces, so each one is assigned conditionally.
func routerServices(appCfg *config.AppConfig, c *ServiceContainer, logger *slog.Logger) httpx.RouterServices {
	services := httpx.RouterServices{
		CookiePrefix:      appCfg.Auth.CookiePrefix,
		CookieDomain:      appCfg.HTTP.CookieDomain,
		SecureCookies:     strings.HasPrefix(appCfg.HTTP.BaseURL, "https://"),
		MaxQuestionLength: appCfg.Auth.MaxQuestionLength,
		Logger:            logger,
	}
	if c == nil {
		return services
	}
	services.RoleExtractor = c.RoleExtractor
	if c.Chat != nil {
		services.Chat = c.Chat
	}
	if c.Upstream != nil {
		services.Upstream = c.Upstream
	}
	if c.Stats != nil {
		services.Stats = c.Stats
	}
	if c.Auth != nil {
		services.Auth = c.Auth
	}
	return services
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context  context.Context
	Server   *http.Server
	Services *ServiceContainer
	Logger   *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and releases
// the container's infrastructure handles.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(cfg.Context, 10*time.Second)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := cfg.Services.Close(shutdownCtx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
