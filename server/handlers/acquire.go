package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ebogdum/lockd/metrics"
	"github.com/ebogdum/lockd/registry"
)

// maxBodySize bounds the acquire request body. Tokens are identifiers, not
// payloads.
const maxBodySize = 1 << 20

// lockRequest is the body of POST /lock/{key}. Token is a pointer so a body
// that omits the field entirely can be told apart from an explicit empty
// token, which is legal.
type lockRequest struct {
	Token *string `json:"token"`
}

// AcquireLock handles POST /lock/{key} requests.
//
// The stored record for the key is created or overwritten unconditionally:
// last writer wins and a previously stored token is discarded. Responds
// 201 Created with an empty body.
func AcquireLock(reg registry.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		var req lockRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			SendErrorResponse(w, logger, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
			return
		}
		if req.Token == nil {
			SendErrorResponse(w, logger, fmt.Errorf("missing token field"), http.StatusBadRequest)
			return
		}

		start := time.Now()
		err := reg.Acquire(r.Context(), key, *req.Token)
		metrics.RegistryOpDuration.WithLabelValues("acquire").Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.RegistryOpsTotal.WithLabelValues("acquire", "error").Inc()
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		metrics.RegistryOpsTotal.WithLabelValues("acquire", "success").Inc()
		updateActiveLocks(r, reg, logger)

		logger.Debug("Lock acquired", zap.String("key", key))
		w.WriteHeader(http.StatusCreated)
	}
}

// updateActiveLocks refreshes the active-locks gauge after a mutation.
func updateActiveLocks(r *http.Request, reg registry.Registry, logger *zap.Logger) {
	n, err := reg.Len(r.Context())
	if err != nil {
		logger.Debug("Failed to read registry size", zap.Error(err))
		return
	}
	metrics.ActiveLocks.Set(float64(n))
}
