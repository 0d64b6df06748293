package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Authorized reports whether the Authorization header carries token as a
// bearer credential. A missing header or an empty token never authorizes.
func Authorized(header http.Header, token string) bool {
	value := header.Get(authorizationHeader)
	if value == "" || token == "" {
		return false
	}

	parts := strings.Split(value, bearerPrefix)
	if len(parts) < 2 {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) == 1
}
