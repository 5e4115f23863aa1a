package httpx

import (
	"log/slog"
	"net/http"

	"github.com/beaconworks/kb-chat-api/internal/adapters/cookiesession"
	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Chat     ChatAsker
	Upstream AnswerForwarder // optional, switches the ask route to proxy mode
	Stats    StatsProvider
	Auth     AuthServiceInterface

	RoleExtractor ports.RoleExtractor
	CookiePrefix  string
	CookieDomain  string
	SecureCookies bool

	MaxQuestionLength int
	Logger            *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	resolver := cookiesession.Resolver{Prefix: services.CookiePrefix}
	gate := &Gatekeeper{
		Resolver:  resolver,
		Extractor: services.RoleExtractor,
		Logger:    services.Logger,
	}

	chatHandlers := &ChatHandlers{
		Svc:               services.Chat,
		Upstream:          services.Upstream,
		MaxQuestionLength: services.MaxQuestionLength,
		Logger:            services.Logger,
	}
	adminHandlers := &AdminHandlers{Stats: services.Stats, Logger: services.Logger}
	pageHandlers := &PageHandlers{}

	userTier := gate.RequireTier(domainauth.ResourceUserTier)
	adminTier := gate.RequireTier(domainauth.ResourceAdminTier)
	userPageGuard := gate.RequireTierBrowser(domainauth.ResourceUserTier)
	adminPageGuard := gate.RequireTierBrowser(domainauth.ResourceAdminTier)

	mux.Handle("POST /chatbot/ask", userTier(http.HandlerFunc(chatHandlers.Ask)))
	mux.Handle("GET /admin/stats", adminTier(http.HandlerFunc(adminHandlers.UserStats)))

	mux.Handle("GET /{$}", userPageGuard(http.HandlerFunc(pageHandlers.Chat)))
	mux.Handle("GET /admin", adminPageGuard(http.HandlerFunc(pageHandlers.Admin)))
	mux.Handle("GET /unauthorized", http.HandlerFunc(pageHandlers.Unauthorized))

	if services.Auth != nil {
		authHandlers := &AuthHandlers{
			Svc:          services.Auth,
			Resolver:     resolver,
			CookieDomain: services.CookieDomain,
			Secure:       services.SecureCookies,
			Logger:       services.Logger,
		}
		mux.Handle("GET /auth/login", http.HandlerFunc(authHandlers.Login))
		mux.Handle("GET /auth/callback", http.HandlerFunc(authHandlers.Callback))
		mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))
		mux.Handle("POST /auth/confirm", http.HandlerFunc(authHandlers.Confirm))
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Logging(logger)(Recover(logger)(mux))
}
