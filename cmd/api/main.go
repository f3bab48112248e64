package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adarshrealtor/lead-assistant/internal/api/router"
	appconfig "github.com/adarshrealtor/lead-assistant/internal/config"
	"github.com/adarshrealtor/lead-assistant/internal/conversation"
	"github.com/adarshrealtor/lead-assistant/internal/dashboard"
	httpmiddleware "github.com/adarshrealtor/lead-assistant/internal/http/middleware"
	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/internal/livefeed"
	"github.com/adarshrealtor/lead-assistant/internal/notify"
	"github.com/adarshrealtor/lead-assistant/internal/observability/metrics"
	"github.com/adarshrealtor/lead-assistant/internal/settings"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()

	logger := newLogger(cfg, os.Stdout)
	logger.Info("starting lead assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"model", cfg.GeminiModel,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	app := newApp(cfg, conversation.GeminiClientFactory(cfg.GeminiModel), logger)
	app.start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.TurnTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	stop()
	app.close()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// app is the wired object graph behind the HTTP server.
type app struct {
	handler  http.Handler
	settings *settings.Store
	leads    *leads.Store
	queue    *conversation.MemoryQueue
	manager  *conversation.Manager
	worker   *conversation.ExtractionWorker
	feed     *livefeed.Hub
	limiter  *httpmiddleware.RateLimiter
	alerter  *notify.LeadAlerter
	idleTTL  time.Duration
	logger   *logging.Logger
}

// newLogger writes JSON in production and readable text elsewhere.
func newLogger(cfg *appconfig.Config, w io.Writer) *logging.Logger {
	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	return logging.NewWithWriter(cfg.LogLevel, format, w)
}

func newApp(cfg *appconfig.Config, factory conversation.ClientFactory, logger *logging.Logger) *app {
	metricsHandler, assistantMetrics := setupMetrics(cfg.MetricsEnabled)

	settingsStore := settings.NewStore(settings.Settings{
		APIKey:         cfg.GeminiAPIKey,
		GoogleSheetID:  cfg.GoogleSheetID,
		InstagramToken: cfg.InstagramToken,
	})
	leadStore := leads.NewStore()

	queue := conversation.NewMemoryQueue(cfg.ExtractionQueueSize)
	publisher := conversation.NewPublisher(queue, logger)
	manager := conversation.NewManager(settingsStore, factory, publisher, logger,
		conversation.WithModel(cfg.GeminiModel),
		conversation.WithTemperature(cfg.ChatTemperature),
		conversation.WithTurnTimeout(cfg.TurnTimeout),
		conversation.WithSessionMetrics(assistantMetrics),
	)

	feed := livefeed.NewHub(cfg.CORSAllowedOrigins, logger)
	promoterOpts := []conversation.PromoterOption{
		conversation.WithPromoterMetrics(assistantMetrics),
		conversation.WithPromotionListener(feed),
	}
	alerter := setupLeadAlerts(cfg, logger)
	if alerter != nil {
		promoterOpts = append(promoterOpts, conversation.WithPromotionListener(alerter))
	}
	promoter := conversation.NewPromoter(leadStore, logger, promoterOpts...)
	probe := conversation.NewProbe(logger,
		conversation.WithProbeModel(cfg.GeminiModel),
		conversation.WithProbeMetrics(assistantMetrics),
	)
	worker := conversation.NewExtractionWorker(queue, manager, probe, promoter, logger,
		conversation.WithExtractionTimeout(cfg.ExtractionTimeout),
	)

	limiter := httpmiddleware.NewRateLimiter(cfg.SimulatorRateLimit, cfg.SimulatorRateBurst)

	handler := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadStore, logger),
		SettingsHandler:    settings.NewHandler(settingsStore, logger),
		DashboardHandler:   dashboard.NewHandler(leadStore, settingsStore, manager, logger),
		SimulatorHandler:   conversation.NewHandler(manager, logger),
		LeadFeed:           feed,
		MetricsHandler:     metricsHandler,
		SimulatorLimiter:   limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &app{
		handler:  handler,
		settings: settingsStore,
		leads:    leadStore,
		queue:    queue,
		manager:  manager,
		worker:   worker,
		feed:     feed,
		limiter:  limiter,
		alerter:  alerter,
		idleTTL:  cfg.SessionIdleTTL,
		logger:   logger,
	}
}

func (a *app) start(ctx context.Context) {
	a.worker.Start(ctx)
	go a.limiter.Run(ctx)
	go a.manager.Run(ctx, a.idleTTL)
	if a.alerter != nil {
		go a.alerter.Run(ctx)
	}
}

// close expects the worker's context to be cancelled already.
func (a *app) close() {
	a.worker.Wait()
	a.queue.Close()
	a.manager.Close()
	a.feed.Close()
}

func setupMetrics(enabled bool) (http.Handler, *metrics.AssistantMetrics) {
	if !enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewAssistantMetrics(reg)
}

func setupLeadAlerts(cfg *appconfig.Config, logger *logging.Logger) *notify.LeadAlerter {
	if cfg.LeadAlertEmail == "" {
		return nil
	}
	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	}
	return notify.NewLeadAlerter(sender, []string{cfg.LeadAlertEmail}, logger)
}
