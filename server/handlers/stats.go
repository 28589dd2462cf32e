package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ebogdum/lockd/registry"
)

// StatsResponse reports the current registry size
type StatsResponse struct {
	Locks int `json:"locks"`
}

// Stats handles GET /stats requests with a snapshot of the registry size.
func Stats(reg registry.Registry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := reg.Len(r.Context())
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}
		SendJSONResponse(w, logger, StatsResponse{Locks: n})
	}
}
