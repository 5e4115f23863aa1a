package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/beaconworks/kb-chat-api/internal/adapters/cookiesession"
	"github.com/beaconworks/kb-chat-api/internal/apperr"
	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteAppError(w, apperr.Internal("an unexpected error occurred"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// gateStatus is the outcome of evaluating a request against a resource class.
type gateStatus int

const (
	gateAuthorized gateStatus = iota
	gateNoSession
	gateExpired
	gateNoRole
	gateInsufficient
)

// Gatekeeper evaluates every request fresh from its credential. Decisions are
// never cached across requests; a role change in a newly issued token takes
// effect on the next request carrying it.
type Gatekeeper struct {
	Resolver  cookiesession.Resolver
	Extractor ports.RoleExtractor
	Logger    *slog.Logger
	Now       func() time.Time // test seam, defaults to time.Now
}

func (g *Gatekeeper) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Gatekeeper) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// sessionFromRequest normalizes the two credential carriers into one session:
// a bearer Authorization header wins, the provider cookie convention is the
// fallback. This is the single place both are read.
func (g *Gatekeeper) sessionFromRequest(r *http.Request) *domainauth.Session {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && token != "" {
			return &domainauth.Session{IDToken: token}
		}
		// A malformed Authorization header is not silently ignored in favor
		// of cookies; the caller chose header auth and got it wrong.
		return nil
	}
	return g.Resolver.Resolve(r)
}

// evaluate runs the authorization sequence for a resource class.
func (g *Gatekeeper) evaluate(r *http.Request, class domainauth.ResourceClass) (*Principal, gateStatus) {
	session := g.sessionFromRequest(r)
	if session == nil {
		return nil, gateNoSession
	}

	claims := session.Claims()
	if claims == nil {
		// Undecodable credential, same as no credential.
		return nil, gateNoSession
	}

	if claims.ExpiredAt(g.now()) {
		return nil, gateExpired
	}

	role := domainauth.RoleFromClaim(g.Extractor.Extract(claims))
	if role == domainauth.RoleNone {
		return nil, gateNoRole
	}

	if !domainauth.Authorize(role, class) {
		return nil, gateInsufficient
	}

	return &Principal{
		Username: claims.Username(),
		Role:     role,
		Claims:   claims,
		IDToken:  session.IDToken,
	}, gateAuthorized
}

// RequireTier returns a middleware guarding a JSON API route. Failures are
// answered in the error envelope: 401 for anything session-shaped, 403 for
// role problems.
func (g *Gatekeeper) RequireTier(class domainauth.ResourceClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, status := g.evaluate(r, class)
			switch status {
			case gateAuthorized:
				ctx := SetPrincipalInContext(r.Context(), principal)
				next.ServeHTTP(w, r.WithContext(ctx))
			case gateNoSession:
				WriteAppError(w, apperr.Unauthorized("authentication required"))
			case gateExpired:
				WriteAppError(w, apperr.Unauthorized("session expired"))
			case gateNoRole, gateInsufficient:
				g.logger().Info("request denied",
					slog.String("path", r.URL.Path),
					slog.String("reason", denyReason(status)))
				WriteAppError(w, apperr.Forbidden("insufficient permissions"))
			}
		})
	}
}

// RequireTierBrowser returns a middleware guarding a page route. Instead of
// the JSON envelope it redirects: to login (carrying the original path, and
// an expiry marker when applicable) or to the unauthorized page.
func (g *Gatekeeper) RequireTierBrowser(class domainauth.ResourceClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, status := g.evaluate(r, class)
			switch status {
			case gateAuthorized:
				ctx := SetPrincipalInContext(r.Context(), principal)
				next.ServeHTTP(w, r.WithContext(ctx))
			case gateNoSession:
				redirectToLogin(w, r, false)
			case gateExpired:
				redirectToLogin(w, r, true)
			case gateNoRole, gateInsufficient:
				g.logger().Info("request denied",
					slog.String("path", r.URL.Path),
					slog.String("reason", denyReason(status)))
				http.Redirect(w, r, "/unauthorized", http.StatusFound)
			}
		})
	}
}

func denyReason(status gateStatus) string {
	if status == gateNoRole {
		return "no role assigned"
	}
	return "insufficient role"
}

// redirectToLogin sends the browser to the login page with the current path
// as the post-login destination.
func redirectToLogin(w http.ResponseWriter, r *http.Request, expired bool) {
	redirectPath := r.URL.Path
	if r.URL.RawQuery != "" {
		redirectPath += "?" + r.URL.RawQuery
	}
	target := "/auth/login?redirect=" + url.QueryEscape(redirectPath)
	if expired {
		target += "&error=session_expired"
	}
	http.Redirect(w, r, target, http.StatusFound)
}
