// Package auth provides API key authentication for the administrative
// endpoints of lockd. The lock and unlock endpoints are unauthenticated;
// only /purge is guarded, and only when keys are configured.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
)

// ErrAuthenticationFailed is returned for missing, empty or unknown API keys.
var ErrAuthenticationFailed = errors.New("authentication failed")

// Authenticator defines the interface for validating request credentials
type Authenticator interface {
	// Authenticate validates an Authorization header value.
	Authenticate(ctx context.Context, credential string) error
}

// APIKeyAuthenticator validates requests against a static set of API keys.
type APIKeyAuthenticator struct {
	keys []string
}

// NewAPIKeyAuthenticator creates an authenticator accepting the given keys.
// Empty keys are ignored.
func NewAPIKeyAuthenticator(keys []string) *APIKeyAuthenticator {
	valid := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != "" {
			valid = append(valid, key)
		}
	}
	return &APIKeyAuthenticator{keys: valid}
}

// Enabled reports whether any API key is configured.
func (a *APIKeyAuthenticator) Enabled() bool {
	return len(a.keys) > 0
}

// Authenticate validates an Authorization header value. Every configured key
// is compared in constant time so an attacker cannot probe key prefixes.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, credential string) error {
	credential = strings.TrimPrefix(credential, "Bearer ")
	credential = strings.TrimSpace(credential)

	if credential == "" {
		return ErrAuthenticationFailed
	}

	matched := false
	for _, key := range a.keys {
		if subtle.ConstantTimeCompare([]byte(credential), []byte(key)) == 1 {
			matched = true
		}
	}
	if !matched {
		return ErrAuthenticationFailed
	}
	return nil
}
