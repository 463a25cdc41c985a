// Package auth checks the shared-secret bearer token callers present.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

var (
	// ErrMissingCredential means the Authorization header is absent or is not
	// a "Bearer " credential.
	ErrMissingCredential = errors.New("auth: missing access key")
	// ErrInvalidCredential means a bearer token was presented but does not
	// match the configured access key.
	ErrInvalidCredential = errors.New("auth: invalid access key")
)

// CheckBearer validates an Authorization header value against accessKey.
// The prefix match is case-sensitive and the comparison is constant time.
func CheckBearer(header, accessKey string) error {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ErrMissingCredential
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if subtle.ConstantTimeCompare([]byte(token), []byte(accessKey)) != 1 {
		return ErrInvalidCredential
	}
	return nil
}
