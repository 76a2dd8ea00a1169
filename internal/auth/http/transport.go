package http

import "net/http"

const (
	// AccessTokenCookie carries the short-lived access JWT.
	AccessTokenCookie = "accessToken"

	// RefreshTokenCookie carries the long-lived refresh JWT.
	RefreshTokenCookie = "refreshToken"

	// CSRFHeader is the request header echoing the CSRF token from the
	// login/refresh response body.
	CSRFHeader = "X-CSRF-Token"

	// csrfNullValue is what some browser fetch wrappers send when the stored
	// token is missing; it is treated as absent, not as a candidate value.
	csrfNullValue = "null"
)

// cookieValue returns the cookie value, or "" when the cookie is not present.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// csrfHeaderValue returns the CSRF header, or "" when absent or the "null"
// placeholder.
func csrfHeaderValue(r *http.Request) string {
	v := r.Header.Get(CSRFHeader)
	if v == csrfNullValue {
		return ""
	}
	return v
}
