// FilePath: api/middleware/api.middleware.auth.go
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/smartbus-iot/sensor-hub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

// APIKeyConfig names the header devices authenticate with and the shared
// secret it must carry
type APIKeyConfig struct {
	Header string
	Key    string
}

type APIKeyMiddleware struct {
	config APIKeyConfig
}

func NewAPIKeyMiddleware(config APIKeyConfig) *APIKeyMiddleware {
	return &APIKeyMiddleware{config: config}
}

// Authenticate rejects requests whose key header does not match the
// configured secret. The body is never read on rejection.
func (m *APIKeyMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(m.config.Header)
		if provided == "" {
			nuts.L.Warnf("[Auth] Missing %s header from %s", m.config.Header, r.RemoteAddr)
			handleError(w, errors.NewAuthError("invalid API key", nil).WithRequestID(nuts.NID("req", 12)))
			return
		}

		if !m.valid(provided) {
			nuts.L.Warnf("[Auth] Invalid API key from %s", r.RemoteAddr)
			handleError(w, errors.NewAuthError("invalid API key", nil).WithRequestID(nuts.NID("req", 12)))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *APIKeyMiddleware) valid(provided string) bool {
	if m.config.Key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(m.config.Key)) == 1
}

func handleError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Code)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		nuts.L.Errorf("[Auth] Failed to write error response: %v", err)
	}
}
