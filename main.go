package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vfx-indexer/internal/database"
	"vfx-indexer/internal/handlers"
	"vfx-indexer/internal/indexstore"
	"vfx-indexer/internal/logging"
	"vfx-indexer/internal/metrics"
	"vfx-indexer/internal/middleware"
	"vfx-indexer/internal/scanner"
	"vfx-indexer/internal/startup"
	"vfx-indexer/internal/watcher"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize the engine: index store, scanner, watcher manager
	store := indexstore.New()
	sc := scanner.New(store, db)

	startup.LogWatcherInit(config.DebounceWindow)
	watch := watcher.NewManager(store, config.DebounceWindow)

	// Initialize metrics
	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	// Initialize handlers
	h := handlers.New(db, store, sc, watch, config)

	// Setup router
	router := setupRouter(h, config)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	meteredRouter := middleware.Metrics(middleware.DefaultMetricsConfig())(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(meteredRouter)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Serve metrics on a dedicated port when configured
	if config.MetricsEnabled && config.MetricsPort != config.Port {
		go serveMetrics(config.MetricsPort)
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, watch)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/projects", h.CreateProject).Methods("POST")
	api.HandleFunc("/projects", h.ListProjects).Methods("GET")
	api.HandleFunc("/projects/{id}", h.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", h.DeleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{id}/scan", h.ScanProject).Methods("POST")
	api.HandleFunc("/projects/{id}/index", h.GetIndex).Methods("GET")
	api.HandleFunc("/projects/{id}/resolve", h.ResolveVersion).Methods("GET")
	api.HandleFunc("/projects/{id}/watch", h.StartWatch).Methods("POST")
	api.HandleFunc("/projects/{id}/watch", h.StopWatch).Methods("DELETE")
	api.HandleFunc("/watches", h.ListWatches).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")

	// Metrics on the main port when no dedicated port is configured
	if config.MetricsEnabled && config.MetricsPort == config.Port {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	return r
}

func serveMetrics(port string) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      m,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, watch *watcher.Manager) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping watchers")
	watch.StopAll()
	startup.LogShutdownStepComplete("Watchers stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
