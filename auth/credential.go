package auth

import (
	"net/http"
	"strings"
)

// BearerFromRequest extracts the bearer credential accompanying a
// handshake. Carriers are checked in order: Authorization header, token
// query parameter, token cookie. Returns "" when no credential is present.
func BearerFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
