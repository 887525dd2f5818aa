// FilePath: api/resources/api.resource.sensors.go
package resources

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/smartbus-iot/sensor-hub/internal/errors"
	"github.com/smartbus-iot/sensor-hub/internal/models"
	"github.com/smartbus-iot/sensor-hub/internal/relay"
	"github.com/smartbus-iot/sensor-hub/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// maxIngestBodyBytes caps ingestion bodies; a reading is a few dozen bytes
const maxIngestBodyBytes = 1 << 20

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// SensorHandlers encapsulates the sensor-related HTTP handlers
type SensorHandlers struct {
	service *service.Service
}

// relayTestQuery holds the query parameters of the manual relay check
type relayTestQuery struct {
	Temperature float64 `schema:"temperature,required"`
	Humidity    float64 `schema:"humidity,required"`
}

// @Summary Ingest a sensor reading
// @Description Store a temperature/humidity reading from a device and relay it to ThingSpeak
// @Tags sensors
// @Accept json
// @Produce json
// @Param reading body models.IngestRequest true "Sensor reading"
// @Success 200 {object} models.IngestResponse
// @Failure 400 {object} errors.APIError
// @Failure 401 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /sensors/ingest [post]
// @Security ApiKeyAuth
func (h *SensorHandlers) Ingest(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			respondWithError(w, errors.NewValidationError("request body too large", err).WithRequestID(requestID))
			return
		}
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if err := req.Validate(); err != nil {
		respondWithError(w, errors.NewValidationError(err.Error(), err).WithRequestID(requestID))
		return
	}

	id, err := h.service.IngestReading(r.Context(), req.Reading())
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to store reading", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, models.IngestResponse{Status: "ok", ID: id})
}

// @Summary Send a test reading to ThingSpeak
// @Description Relay the given values without storing them
// @Tags sensors
// @Produce json
// @Param temperature query number true "Temperature in °C"
// @Param humidity query number true "Relative humidity in %"
// @Success 200 {object} models.RelayTestResponse
// @Failure 400 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /sensors/test_thingspeak [get]
func (h *SensorHandlers) TestThingSpeak(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q relayTestQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("temperature and humidity must be numbers", err).
			WithRequestID(requestID).
			WithDetails(err.Error()))
		return
	}

	ok, err := h.service.SendTestReading(r.Context(), q.Temperature, q.Humidity)
	if err != nil {
		respondWithError(w, errors.NewInternalError("failed to send data to ThingSpeak", err).WithRequestID(requestID))
		return
	}
	if !ok {
		respondWithError(w, errors.NewRelayError("failed to send data to ThingSpeak", nil).WithRequestID(requestID))
		return
	}

	message := fmt.Sprintf("Data sent to ThingSpeak: %s°C / %s%%",
		relay.FormatValue(q.Temperature), relay.FormatValue(q.Humidity))
	respondWithJSON(w, http.StatusOK, models.RelayTestResponse{Status: "success", Message: message})
}

// @Summary Get the latest reading
// @Description Newest stored reading together with the bus list shown on the dashboard
// @Tags sensors
// @Produce json
// @Success 200 {object} models.LatestReading
// @Failure 404 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /sensors/latest [get]
func (h *SensorHandlers) Latest(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	latest, err := h.service.LatestReading(r.Context())
	if err != nil {
		var apiErr *errors.APIError
		if stderrors.As(err, &apiErr) && errors.IsNotFound(apiErr) {
			respondWithError(w, apiErr.WithRequestID(requestID))
			return
		}
		respondWithError(w, errors.NewInternalError("failed to fetch latest reading", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, latest)
}
