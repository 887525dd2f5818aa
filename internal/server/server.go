// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/smartbus-iot/sensor-hub/api"
	"github.com/smartbus-iot/sensor-hub/api/middleware"
	"github.com/smartbus-iot/sensor-hub/internal/config"
	"github.com/smartbus-iot/sensor-hub/internal/database"
	"github.com/smartbus-iot/sensor-hub/internal/monitoring"
	"github.com/smartbus-iot/sensor-hub/internal/relay"
	"github.com/smartbus-iot/sensor-hub/internal/repository"
	"github.com/smartbus-iot/sensor-hub/internal/repository/memory"
	"github.com/smartbus-iot/sensor-hub/internal/repository/mongodb"
	"github.com/smartbus-iot/sensor-hub/internal/repository/redisstream"
	"github.com/smartbus-iot/sensor-hub/internal/repository/sqldb"
	"github.com/smartbus-iot/sensor-hub/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	readings   repository.ReadingRepository
	service    *service.Service
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	if err := s.initialize(context.Background()); err != nil {
		return err
	}
	defer s.close()

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// initialize connects the reading store and wires the service, monitoring and routes
func (s *Server) initialize(ctx context.Context) error {
	readings, err := openReadingStore(ctx, s.config)
	if err != nil {
		return fmt.Errorf("failed to open %s reading store: %w", s.config.Store.Driver, err)
	}
	s.readings = readings

	if s.config.ThingSpeak.WriteAPIKey == "" {
		nuts.L.Warnf("[Server] ThingSpeak write API key not set, readings will be stored but not relayed")
	}

	s.service = service.New(readings, relay.NewThingSpeakClient(s.config.ThingSpeak))
	if err := s.service.Validate(); err != nil {
		return err
	}
	s.monitoring = monitoring.NewService()

	// Set up event handlers
	if err := s.setupEventHandlers(); err != nil {
		return err
	}

	s.srv.Handler = api.NewRouter(s.service, s.monitoring, api.RouterConfig{
		APIKey: middleware.APIKeyConfig{
			Header: s.config.Auth.Header,
			Key:    s.config.Auth.IoTAPIKey,
		},
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		StoreName:      s.config.Store.Driver,
	})
	return nil
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) close() {
	if s.readings == nil {
		return
	}
	if err := s.readings.Close(); err != nil {
		nuts.L.Errorf("[Server] Failed to close reading store: %v", err)
	}
}

func (s *Server) setupEventHandlers() error {
	handlers := map[string]func(labels map[string]string){
		service.EventReadingStored: func(labels map[string]string) {
			s.monitoring.RecordEvent(service.EventReadingStored, labels)
		},
		service.EventRelaySent: func(labels map[string]string) {
			s.monitoring.RecordEvent(service.EventRelaySent, labels)
		},
		service.EventRelayRejected: func(labels map[string]string) {
			nuts.L.Debugf("[Relay] Reading %s not acknowledged by ThingSpeak", labels["id"])
			s.monitoring.RecordEvent(service.EventRelayRejected, labels)
		},
		service.EventRelayFailed: func(labels map[string]string) {
			s.monitoring.RecordEvent(service.EventRelayFailed, labels)
		},
	}

	for event, handler := range handlers {
		if err := s.service.OnEvent(event, handler); err != nil {
			return err
		}
	}
	return nil
}

// openReadingStore connects the configured backend within the store connect timeout
func openReadingStore(ctx context.Context, cfg *config.Config) (repository.ReadingRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Store.ConnectTimeout)
	defer cancel()

	switch cfg.Store.Driver {
	case config.DriverMongo:
		db, err := database.NewMongoDB(ctx, cfg.Database.Mongo)
		if err != nil {
			return nil, err
		}
		return mongodb.NewReadingRepository(db, cfg.Database.Mongo.Collection), nil

	case config.DriverPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		return newSQLStore(ctx, db)

	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.Database.SQLite)
		if err != nil {
			return nil, err
		}
		return newSQLStore(ctx, db)

	case config.DriverRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redisstream.NewReadingRepository(client, cfg.Redis.Stream), nil

	case config.DriverMemory:
		nuts.L.Warnf("[Server] Using in-memory reading store, readings are lost on restart")
		return memory.NewReadingRepository(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newSQLStore(ctx context.Context, db database.DB) (repository.ReadingRepository, error) {
	repo, err := sqldb.NewReadingRepository(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
