// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/smartbus-iot/sensor-hub/internal/errors"
	"github.com/smartbus-iot/sensor-hub/internal/monitoring"
	"github.com/smartbus-iot/sensor-hub/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Sensors *SensorHandlers
	System  *SystemHandlers
}

// NewResources creates a new Resources instance. storeName is reported by the health check.
func NewResources(svc *service.Service, metrics *monitoring.Service, storeName string) *Resources {
	return &Resources{
		Sensors: &SensorHandlers{service: svc},
		System:  &SystemHandlers{service: svc, metrics: metrics, storeName: storeName},
	}
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		nuts.L.Errorf("[API] Failed to write error response: %v", encErr)
	}
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		nuts.L.Errorf("[API] Failed to write response: %v", err)
	}
}
