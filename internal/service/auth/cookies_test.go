package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestCookieManagerSet(t *testing.T) {
	t.Parallel()

	mgr := NewCookieManager(true, 30*time.Minute, 7*24*time.Hour)

	rec := httptest.NewRecorder()
	mgr.Set(rec, "access-token-value", "refresh-token-value")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	access := findCookie(t, cookies, AccessTokenCookie)
	assert.Equal(t, "access-token-value", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, int((30 * time.Minute).Seconds()), access.MaxAge)

	refresh := findCookie(t, cookies, RefreshTokenCookie)
	assert.Equal(t, "refresh-token-value", refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestCookieManagerSecureFollowsConfig(t *testing.T) {
	t.Parallel()

	mgr := NewCookieManager(false, time.Minute, time.Hour)

	rec := httptest.NewRecorder()
	mgr.Set(rec, "a", "r")

	for _, c := range rec.Result().Cookies() {
		assert.False(t, c.Secure, "cookie %q should not be Secure in insecure mode", c.Name)
	}
}

func TestCookieManagerClear(t *testing.T) {
	t.Parallel()

	mgr := NewCookieManager(true, 30*time.Minute, 7*24*time.Hour)

	rec := httptest.NewRecorder()
	mgr.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := findCookie(t, cookies, name)
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
		assert.True(t, c.HttpOnly)
	}
}
