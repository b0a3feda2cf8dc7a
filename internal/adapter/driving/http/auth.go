package httphandler

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// adminUser is the fixed user name accepted with HTTP Basic credentials.
const adminUser = "admin"

// AdminAuth checks requests for the configured admin token.
type AdminAuth struct {
	token string
}

// NewAdminAuth creates an AdminAuth. An empty token disables admin access.
func NewAdminAuth(token string) *AdminAuth {
	return &AdminAuth{token: token}
}

// IsAdmin reports whether r carries the admin token, either as a bearer token
// or as the password of Basic credentials for user "admin".
func (a *AdminAuth) IsAdmin(r *http.Request) bool {
	if a == nil || a.token == "" {
		return false
	}

	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return a.matches(strings.TrimSpace(bearer))
	}

	if user, pass, ok := r.BasicAuth(); ok {
		return user == adminUser && a.matches(pass)
	}

	return false
}

func (a *AdminAuth) matches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.token)) == 1
}
