package httpx

import (
	"net/http"
	"time"
)

// SetSessionCookie sets an HttpOnly, SameSite=Strict session cookie living for
// maxAge. Secure is only enabled on production deployments so local
// development over plain HTTP keeps working.
func SetSessionCookie(w http.ResponseWriter, name, value string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires a cookie immediately. Safe to call for cookies that
// were never set.
func ClearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
