package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ebogdum/lockd/auth"
)

// PurgeAuthMiddleware creates middleware that guards the purge endpoint with
// API key authentication. When no keys are configured the middleware passes
// every request through, preserving the open default contract.
func PurgeAuthMiddleware(authenticator *auth.APIKeyAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authenticator.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing Authorization header on purge request")
				sendAuthError(w, logger)
				return
			}

			if err := authenticator.Authenticate(r.Context(), authHeader); err != nil {
				logger.Debug("Purge authentication failed", zap.Error(err))
				sendAuthError(w, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sendAuthError sends a JSON 401 response
func sendAuthError(w http.ResponseWriter, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte(`{"code":"AUTHENTICATION_FAILED","message":"authentication failed"}`)); err != nil {
		logger.Error("Failed to write auth error response", zap.Error(err))
	}
}
