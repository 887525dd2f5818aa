// FilePath: api/api.router.go
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/smartbus-iot/sensor-hub/api/middleware"
	"github.com/smartbus-iot/sensor-hub/api/resources"
	_ "github.com/smartbus-iot/sensor-hub/docs"
	"github.com/smartbus-iot/sensor-hub/internal/monitoring"
	"github.com/smartbus-iot/sensor-hub/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// RouterConfig carries the HTTP-facing settings of the router
type RouterConfig struct {
	APIKey         middleware.APIKeyConfig
	AllowedOrigins []string
	StoreName      string
}

type Router struct {
	router    *mux.Router
	handler   http.Handler
	auth      *middleware.APIKeyMiddleware
	resources *resources.Resources
}

func NewRouter(svc *service.Service, metrics *monitoring.Service, cfg RouterConfig) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewAPIKeyMiddleware(cfg.APIKey),
		resources: resources.NewResources(svc, metrics, cfg.StoreName),
	}

	r.setupRoutes()
	r.handler = r.wrap(cfg)
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.System.Health).Methods(http.MethodGet)
	api.HandleFunc("/metrics", r.resources.System.Metrics).Methods(http.MethodGet)
	api.HandleFunc("/swagger.json", r.resources.System.Docs).Methods(http.MethodGet)

	// Sensors
	sensors := api.PathPrefix("/sensors").Subrouter()
	sensors.HandleFunc("/test_thingspeak", r.resources.Sensors.TestThingSpeak).Methods(http.MethodGet)
	sensors.HandleFunc("/latest", r.resources.Sensors.Latest).Methods(http.MethodGet)

	// Device routes
	sensors.Handle("/ingest", r.auth.Authenticate(http.HandlerFunc(r.resources.Sensors.Ingest))).Methods(http.MethodPost)
}

// wrap adds access logging, panic recovery and CORS around the routes
func (r *Router) wrap(cfg RouterConfig) http.Handler {
	allowedHeaders := []string{"Content-Type"}
	if cfg.APIKey.Header != "" {
		allowedHeaders = append(allowedHeaders, cfg.APIKey.Header)
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders(allowedHeaders),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)

	return handlers.CombinedLoggingHandler(accessLog{}, recovery(cors(r.router)))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// accessLog sends combined log lines to the service logger
type accessLog struct{}

func (accessLog) Write(p []byte) (int, error) {
	nuts.L.Infof("[HTTP] %s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

type recoveryLogger struct{}

func (recoveryLogger) Println(args ...interface{}) {
	nuts.L.Errorf("[HTTP] Recovered from panic: %v", args)
}
