package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/liamcoop/sentest/internal/config"
	"github.com/liamcoop/sentest/internal/logger"
	"github.com/liamcoop/sentest/migrations"
	"github.com/liamcoop/sentest/registration"
	"github.com/liamcoop/sentest/scenario"
)

const defaultPublicBase = "http://localhost:3000"

type Server struct {
	cfg       *config.Config
	db        *sql.DB // nil for the memory store
	store     registration.Store
	rules     *registration.Rules
	generator *scenario.Generator
	issued    scenario.IssuedCache
	router    *chi.Mux

	generated   atomic.Int64
	validated   atomic.Int64
	correct     atomic.Int64
	registered  atomic.Int64
	auditFailed atomic.Int64
}

// NewServer opens the store selected by cfg.StoreDriver and builds the router
func NewServer(cfg *config.Config) (*Server, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return newServer(cfg, nil, registration.NewInMemoryStore())

	case config.DriverSQLite:
		if err := migrations.Up(migrations.SQLiteURL(cfg.SQLitePath)); err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite allows one writer at a time
		db.SetMaxOpenConns(1)
		return NewServerWithDB(cfg, db)

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return NewServerWithDB(cfg, db)
	}
	return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
}

// NewServerWithDB creates a server backed by an already migrated database.
// cfg.StoreDriver names the driver db was opened with.
func NewServerWithDB(cfg *config.Config, db *sql.DB) (*Server, error) {
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return newServer(cfg, db, registration.NewSQLStore(db, cfg.StoreDriver))
}

func newServer(cfg *config.Config, db *sql.DB, store registration.Store) (*Server, error) {
	rules, err := registration.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load registration rules: %w", err)
	}
	logger.Info("Registration rules loaded", "rules", rules.Len(), "file", cfg.RulesFile)

	s := &Server{
		cfg:       cfg,
		db:        db,
		store:     store,
		rules:     rules,
		generator: scenario.NewGenerator(scenario.NewSource(cfg.RandomSeed)),
		issued: scenario.NewInMemoryIssuedCache(scenario.CacheConfig{
			TTL:        cfg.AuditTTL,
			MaxEntries: cfg.AuditMaxEntries,
		}),
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/start-test", s.handleStartTest)
		r.Post("/validate", s.handleValidate)
		r.Post("/register", s.handleRegister)
		r.Get("/qr", s.handleQR)
		r.Get("/routes", s.handleRoutes)
		r.Get("/metrics", s.handleMetrics)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the database, if any
func (s *Server) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const slowRequestThreshold = 2 * time.Second

// requestLogger logs every request through the structured logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed.String(),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if elapsed > slowRequestThreshold {
			logger.WarnSlowRequest()
			logger.Logger.Warn("Slow request", args...)
			return
		}
		logger.Debug("Request served", args...)
	})
}

func main() {
	logCfg, err := logger.ConfigFromEnv()
	if err != nil {
		logger.Fatal("Invalid logger configuration", "error", err)
	}
	if err := logger.Setup(context.Background(), logCfg); err != nil {
		logger.Warn("Logger setup degraded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server", "error", err)
	}
	defer server.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("Server starting", "addr", httpServer.Addr, "store", cfg.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
	if err := logger.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}
}
