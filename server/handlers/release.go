package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ebogdum/lockd/metrics"
	"github.com/ebogdum/lockd/registry"
)

// ReleaseLock handles POST /unlock/{key} requests.
//
// The record is removed and its token returned verbatim. No holder check is
// performed: any caller naming the key releases it. Responds 200 OK with the
// stored record, or 410 Gone when the key holds no record.
func ReleaseLock(reg registry.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		start := time.Now()
		lock, err := reg.Release(r.Context(), key)
		metrics.RegistryOpDuration.WithLabelValues("release").Observe(time.Since(start).Seconds())

		if err == registry.ErrNotFound {
			metrics.RegistryOpsTotal.WithLabelValues("release", "not_found").Inc()
			SendErrorResponse(w, logger, err, http.StatusGone)
			return
		}
		if err != nil {
			metrics.RegistryOpsTotal.WithLabelValues("release", "error").Inc()
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		metrics.RegistryOpsTotal.WithLabelValues("release", "success").Inc()
		updateActiveLocks(r, reg, logger)

		logger.Debug("Lock released", zap.String("key", key))
		SendJSONResponse(w, logger, lock)
	}
}
