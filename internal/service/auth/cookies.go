package auth

import (
	"net/http"
	"time"
)

// Cookie names for the two token types.
const (
	AccessTokenCookie  = "user_access_token"
	RefreshTokenCookie = "user_refresh_token"
)

// CookieManager writes and clears the authentication cookies. Both cookies
// are HTTP-only and SameSite=Lax; the Secure attribute follows the server
// configuration so local plain-HTTP development still works.
type CookieManager struct {
	secure          bool
	accessLifetime  time.Duration
	refreshLifetime time.Duration
}

// NewCookieManager creates a CookieManager. Cookie lifetimes should match
// the corresponding token lifetimes so a cookie never outlives its token
// by more than the browser's clock drift.
func NewCookieManager(secure bool, accessLifetime, refreshLifetime time.Duration) *CookieManager {
	return &CookieManager{
		secure:          secure,
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
	}
}

// Set writes both token cookies to the response.
func (m *CookieManager) Set(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, m.cookie(AccessTokenCookie, accessToken, m.accessLifetime))
	http.SetCookie(w, m.cookie(RefreshTokenCookie, refreshToken, m.refreshLifetime))
}

// Clear expires both token cookies. This is the entirety of logout: there
// is no server-side revocation, so an already-issued token stays valid
// until its natural expiry.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := m.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (m *CookieManager) cookie(name, value string, lifetime time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if lifetime > 0 {
		c.MaxAge = int(lifetime.Seconds())
	}
	return c
}
