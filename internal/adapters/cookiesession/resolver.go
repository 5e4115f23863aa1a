package cookiesession

// Package cookiesession resolves the provider token cookies into a Session.
// The identity provider's hosted client stores tokens under
// "<prefix>.<user>.idToken" (and .accessToken/.refreshToken), with
// "<prefix>.LastAuthUser" naming the currently logged-in principal. This is
// purely cookie-jar string work; no network calls happen here.

import (
	"net/http"
	"strings"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
)

const (
	suffixIDToken      = ".idToken"
	suffixAccessToken  = ".accessToken"
	suffixRefreshToken = ".refreshToken"
	lastAuthUserCookie = "LastAuthUser"
)

// Resolver locates the token cookie set for the current principal.
type Resolver struct {
	// Prefix is the provider cookie naming prefix, typically
	// "<provider>.<clientId>".
	Prefix string
}

// Resolve scans the request cookies and returns the resolved session, or nil
// when no ID token is present. An access token alone is insufficient: the
// role claim lives in the ID token payload.
func (res Resolver) Resolve(r *http.Request) *domainauth.Session {
	if res.Prefix == "" {
		return nil
	}

	base := res.Prefix + "."
	if user := cookieValue(r, base+lastAuthUserCookie); user != "" {
		if sess := res.sessionFor(r, base+user); sess != nil {
			return sess
		}
	}

	// No LastAuthUser marker (or its token set is gone): fall back to the
	// first complete set found in the jar.
	for _, c := range r.Cookies() {
		if !strings.HasPrefix(c.Name, base) || !strings.HasSuffix(c.Name, suffixIDToken) {
			continue
		}
		if sess := res.sessionFor(r, strings.TrimSuffix(c.Name, suffixIDToken)); sess != nil {
			return sess
		}
	}

	return nil
}

func (res Resolver) sessionFor(r *http.Request, userBase string) *domainauth.Session {
	idToken := cookieValue(r, userBase+suffixIDToken)
	if idToken == "" {
		return nil
	}
	return &domainauth.Session{
		IDToken:      idToken,
		AccessToken:  cookieValue(r, userBase+suffixAccessToken),
		RefreshToken: cookieValue(r, userBase+suffixRefreshToken),
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// CookieNames returns the cookie names written for a principal, in the order
// idToken, accessToken, refreshToken, LastAuthUser. The login callback and
// logout handler share this so writes and reads never drift apart.
func (res Resolver) CookieNames(user string) []string {
	base := res.Prefix + "." + user
	return []string{
		base + suffixIDToken,
		base + suffixAccessToken,
		base + suffixRefreshToken,
		res.Prefix + "." + lastAuthUserCookie,
	}
}
