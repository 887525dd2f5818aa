// FilePath: api/resources/api.resource.system.go
package resources

import (
	"context"
	"net/http"
	"time"

	"github.com/smartbus-iot/sensor-hub/internal/errors"
	"github.com/smartbus-iot/sensor-hub/internal/monitoring"
	"github.com/smartbus-iot/sensor-hub/internal/service"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

const healthPingTimeout = 2 * time.Second

// SystemHandlers serve health, metrics and API documentation
type SystemHandlers struct {
	service   *service.Service
	metrics   *monitoring.Service
	storeName string
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} errors.APIError
// @Router /health [get]
func (h *SystemHandlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		respondWithError(w, errors.NewUnavailableError("reading store unreachable", err).
			WithRequestID(nuts.NID("req", 12)).
			WithDetails(map[string]string{"store": h.storeName}))
		return
	}

	respondWithJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: nuts.GetVersion(),
		Store:   h.storeName,
	})
}

// @Summary Event counters
// @Tags system
// @Produce json
// @Success 200 {object} monitoring.Snapshot
// @Router /metrics [get]
func (h *SystemHandlers) Metrics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// Docs serves the registered swagger document
func (h *SystemHandlers) Docs(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		respondWithError(w, errors.NewInternalError("api documentation unavailable", err).WithRequestID(nuts.NID("req", 12)))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		nuts.L.Errorf("[API] Failed to write api documentation: %v", err)
	}
}
