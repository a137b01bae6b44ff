// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrirobotics/datalake/api"
	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/cache"
	"github.com/agrirobotics/datalake/internal/config"
	"github.com/agrirobotics/datalake/internal/database"
	"github.com/agrirobotics/datalake/internal/ingestservice"
	"github.com/agrirobotics/datalake/internal/objectstore"
	"github.com/agrirobotics/datalake/internal/repository"
	"github.com/agrirobotics/datalake/internal/repository/postgres"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config *config.Config
	srv    *http.Server
	db     database.DB
	cache  *cache.StateCache
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start wires dependencies and begins listening for requests. The
// database pool, object store client and cache are constructed once
// here and released on shutdown.
func (s *Server) Start() error {
	svc, tokens, err := s.initializeIngestService()
	if err != nil {
		return err
	}

	router := api.NewRouter(svc, tokens, s.config.Upload.MaxFileSize, s.handleHealth())

	handler := handlers.RecoveryHandler()(
		handlers.CombinedLoggingHandler(os.Stdout, router))

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

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

// waitForShutdown waits for interrupt signal, gracefully shuts down
// the HTTP server and releases the pool and cache clients.
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

	if s.cache != nil {
		s.cache.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			nuts.L.Warnf("[Server] Failed to close database pool: %v", err)
		}
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

// initializeIngestService creates and configures the ingest service
func (s *Server) initializeIngestService() (*ingestservice.IngestService, *auth.TokenService, error) {
	db, err := initPostgres(s.config.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	s.db = db

	store, err := objectstore.NewClient(s.config.ObjectStore)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize object store client: %w", err)
	}

	stateCache := initStateCache(s.config.Redis)
	s.cache = stateCache

	users := postgres.NewUserRepository(db)
	missions := postgres.NewMissionRepository(db)
	telemetry := postgres.NewTelemetryRepository(db)
	images := postgres.NewImageRepository(db)

	tokens := auth.NewTokenService([]byte(s.config.Auth.Secret), s.config.Auth.TokenTTL)
	passwords := auth.NewPasswordHasher(s.config.Auth.BcryptCost)

	// An absent cache must stay a nil interface, not a nil pointer
	// wrapped in a non-nil interface.
	var cacheDep repository.LatestStateCache
	if stateCache != nil {
		cacheDep = stateCache
	}

	svc := ingestservice.New(users, missions, telemetry, images, store, cacheDep, passwords)
	if err := svc.Validate(); err != nil {
		return nil, nil, err
	}
	return svc, tokens, nil
}

func initPostgres(cfg config.PostgresConfig) (database.DB, error) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// initStateCache connects to Redis. The cache is optional: if Redis is
// unreachable at startup, ingest proceeds without it.
func initStateCache(cfg config.RedisConfig) *cache.StateCache {
	if cfg.Host == "" {
		nuts.L.Infof("[Server] Redis not configured, latest-state cache disabled")
		return nil
	}

	c := cache.New(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		nuts.L.Warnf("[Server] Redis unreachable, latest-state cache disabled: %v", err)
		c.Close()
		return nil
	}
	return c
}
