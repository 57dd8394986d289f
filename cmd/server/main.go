package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/CamiloThisPunk/PlanUnsch/internal/api"
	"github.com/CamiloThisPunk/PlanUnsch/internal/catalog"
	"github.com/CamiloThisPunk/PlanUnsch/internal/config"
	"github.com/CamiloThisPunk/PlanUnsch/internal/extract"
	"github.com/CamiloThisPunk/PlanUnsch/internal/inference"
	"github.com/CamiloThisPunk/PlanUnsch/internal/ingest"
	"github.com/CamiloThisPunk/PlanUnsch/internal/logging"
	"github.com/CamiloThisPunk/PlanUnsch/internal/notify"
	"github.com/CamiloThisPunk/PlanUnsch/internal/storage"
	"github.com/CamiloThisPunk/PlanUnsch/internal/validation"
	"github.com/CamiloThisPunk/PlanUnsch/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "planunsch.yaml", "path to the YAML configuration file")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()
	startedAt := time.Now()

	cfg, err := config.LoadConfig(*configPath, *envPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(cfg.Advanced.LogLevel)
	logger := logging.New("server")

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatalf("Failed to create directories: %v", err)
	}

	// Persistence and domain store
	records, err := storage.Open(cfg.Storage.Backend, cfg.GetDataDir())
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	defer records.Close()

	store, err := catalog.New(records)
	if err != nil {
		logger.Fatalf("Failed to load saved state: %v", err)
	}

	// Notifications go to the hub for clients and to the log
	hub := notify.NewHub(cfg.Notifications.HistorySize)
	sink := notify.Multi{hub, notify.LogSink{Logger: logging.New("notify")}}

	inferrer, err := inference.New(inference.Config{
		Backend:        cfg.Inference.Backend,
		APIKey:         cfg.Inference.APIKey,
		Model:          cfg.Inference.Model,
		Endpoint:       cfg.Inference.Endpoint,
		TimeoutSeconds: cfg.Inference.TimeoutSeconds,
	})
	if err != nil {
		logger.Fatalf("Failed to initialize inference: %v", err)
	}
	inferenceBackend := inference.BackendHeuristic
	if _, ok := inferrer.(*inference.Gemini); ok {
		inferenceBackend = inference.BackendGemini + " (" + cfg.Inference.Model + ")"
	}

	ingestMgr := ingest.NewManager(store, extract.NewRegistry(), inferrer, sink, ingest.Options{
		MinTextLength: cfg.Processing.MinTextLength,
		MaxConcurrent: cfg.Processing.MaxConcurrent,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background job cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		retention := time.Duration(cfg.Processing.JobRetentionMinutes) * time.Minute
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := ingestMgr.CleanupOldJobs(retention); n > 0 {
					logger.Debugf("Cleaned up %d finished ingestion jobs", n)
				}
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logging.Level())

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/ingestions/") ||
				path == "/api/notifications" ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogLevel:  log.ERROR,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  cfg.AllowedOrigins(),
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{echo.HeaderContentDisposition},
		}))
	}

	api.SetupMiddleware(e)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Catalog:   store,
		Ingester:  ingestMgr,
		Feed:      hub,
		Notifier:  sink,
		Validator: validation.New(),
		Version:   Version,

		StorageBackend:   cfg.Storage.Backend,
		InferenceBackend: inferenceBackend,
		StartedAt:        startedAt,
	}))

	staticFS, embeddedMode := web.DirFS(cfg.Server.StaticDirectory)
	if embeddedMode {
		web.RegisterStaticRoutes(e, staticFS)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	mode := "API only"
	if embeddedMode {
		mode = "API + frontend"
	}
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PlanUNSCH Server                                ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Storage:   %-46s║\n", cfg.Storage.Backend)
	fmt.Printf("║  Inference: %-46s║\n", inferenceBackend)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}

	// let in-flight ingestions settle so their results are persisted
	ingestMgr.Wait()
	logger.Infof("Stopped")
}
