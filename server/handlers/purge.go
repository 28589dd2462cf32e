package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/lockd/metrics"
	"github.com/ebogdum/lockd/registry"
)

// Purge handles POST /purge requests.
//
// Every record is discarded in one atomic step; no concurrent acquire or
// release observes a partially cleared registry. Purging an already empty
// registry is a success. Responds 200 OK with an empty body.
func Purge(reg registry.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		err := reg.Purge(r.Context())
		metrics.RegistryOpDuration.WithLabelValues("purge").Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.RegistryOpsTotal.WithLabelValues("purge", "error").Inc()
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		metrics.RegistryOpsTotal.WithLabelValues("purge", "success").Inc()
		metrics.ActiveLocks.Set(0)

		logger.Info("Registry purged", zap.String("remote_addr", r.RemoteAddr))
		w.WriteHeader(http.StatusOK)
	}
}
