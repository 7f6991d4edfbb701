package auth

import (
	"net/http"
	"time"
)

// CookieName is the HttpOnly cookie that carries the session JWT.
const CookieName = "token"

// SetSessionCookie stores token in the session cookie.
//
// HttpOnly keeps the token away from page scripts; SameSite=Lax means it is
// sent on top-level navigations but not on cross-site POSTs. secure should be
// true whenever the site is served over HTTPS.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie. The JWT
// itself stays valid until it expires; without the cookie it is never sent.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
