package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	directoryapp "github.com/fieldops/dispatch_services/internal/directory_service/app"
	directorydomain "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	directorypg "github.com/fieldops/dispatch_services/internal/directory_service/repository/postgres"
	"github.com/fieldops/dispatch_services/internal/inbound_processor_service/adapters/classifier"
	inboundapp "github.com/fieldops/dispatch_services/internal/inbound_processor_service/app"
	inbounddomain "github.com/fieldops/dispatch_services/internal/inbound_processor_service/domain"
	inboundpg "github.com/fieldops/dispatch_services/internal/inbound_processor_service/repository/postgres"
	messagingapp "github.com/fieldops/dispatch_services/internal/messaging_service/app"
	"github.com/fieldops/dispatch_services/internal/messaging_service/provider"
	"github.com/fieldops/dispatch_services/internal/platform/config"
	"github.com/fieldops/dispatch_services/internal/platform/database"
	"github.com/fieldops/dispatch_services/internal/platform/logger"
	"github.com/fieldops/dispatch_services/internal/platform/messagebroker"
	"github.com/fieldops/dispatch_services/internal/platform/phone"
	httptransport "github.com/fieldops/dispatch_services/internal/public_api_service/transport/http"
	schedulerapp "github.com/fieldops/dispatch_services/internal/scheduler_service/app"
	servicecallapp "github.com/fieldops/dispatch_services/internal/servicecall_service/app"
	servicecalldomain "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
	servicecallpg "github.com/fieldops/dispatch_services/internal/servicecall_service/repository/postgres"
	"github.com/fieldops/dispatch_services/internal/storage/memory"
)

const (
	serviceName     = "dispatch_service"
	shutdownTimeout = 15 * time.Second
)

// stores bundles the repositories of whichever backend STORE_DRIVER selects.
type stores struct {
	professions   directorydomain.ProfessionRepository
	professionals directorydomain.ProfessionalRepository
	calls         servicecalldomain.ServiceCallRepository
	lifecycle     servicecalldomain.LifecycleRepository
	messages      inbounddomain.MessageRepository
	close         func()
}

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel, serviceName)
	appLogger.Info("Starting service...",
		"http_port", cfg.HTTPPort,
		"metrics_port", cfg.MetricsPort,
		"store_driver", cfg.StoreDriver,
		"intent_provider", cfg.IntentProvider,
		"messaging_api_configured", cfg.MessagingAPIURL != "",
		"operator_auth", cfg.OperatorJWTSecret != "",
	)

	st, err := openStores(mainCtx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialise storage", "error", err)
		os.Exit(1)
	}
	defer st.close()

	var events messagebroker.Publisher = messagebroker.NoopPublisher{}
	if cfg.NATSURL != "" {
		nc, err := messagebroker.NewNATSClient(cfg.NATSURL, appLogger, serviceName)
		if err != nil {
			appLogger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		events = nc
	} else {
		appLogger.Info("NATS_URL not set, lifecycle events disabled")
	}

	sender := newSender(cfg, appLogger)

	cls, err := newClassifier(mainCtx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialise intent classifier", "error", err)
		os.Exit(1)
	}

	validate := httptransport.NewValidator()
	normalizer := phone.NewNormalizer(cfg.PhoneDefaultRegion)

	directory := directoryapp.NewApplication(st.professions, st.professionals, normalizer, appLogger)
	calls := servicecallapp.NewApplication(st.calls, st.lifecycle, events, appLogger)
	dispatcher := messagingapp.NewDispatcher(directory, calls, sender, cfg.MessagingTimeout(), appLogger)
	processor := inboundapp.NewMessageProcessor(st.messages, directory, calls, cls, sender, inboundapp.Timeouts{
		Store:      cfg.StoreTimeout(),
		Classifier: cfg.IntentTimeout(),
		Gateway:    cfg.MessagingTimeout(),
	}, appLogger)
	messageLog := inboundapp.NewMessageLog(st.messages, directory, cfg.MessageLogLimit, appLogger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Webhook:        httptransport.NewWebhookHandler(processor, appLogger, validate),
		Directory:      httptransport.NewDirectoryHandler(directory, appLogger, validate),
		ServiceCalls:   httptransport.NewServiceCallHandler(calls, dispatcher, appLogger, validate),
		Messages:       httptransport.NewMessageHandler(messageLog, dispatcher, appLogger, validate),
		OperatorSecret: cfg.OperatorJWTSecret,
		Logger:         appLogger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		appLogger.Info("Metrics server listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	if interval := cfg.BacklogRefresh(); interval > 0 {
		backlog := schedulerapp.NewBacklogJob(calls, cfg.StoreTimeout(), appLogger)
		scheduler, err := backlog.Start(groupCtx, interval)
		if err != nil {
			appLogger.Error("Failed to start backlog job", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				appLogger.Warn("Backlog scheduler shutdown failed", "error", err)
			}
		}()
	}

	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("HTTP server shutdown failed", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Metrics server shutdown failed", "error", err)
		}
		return nil
	})

	appLogger.Info("Service is ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var groupErr error
	select {
	case sig := <-sigCh:
		appLogger.Info("Received termination signal", "signal", sig.String())
	case groupErr = <-watchGroup(g):
		appLogger.Error("A critical component failed, initiating shutdown", "error", groupErr)
	}

	mainCancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Error during shutdown", "error", err)
	}
	appLogger.Info("Service shutdown complete")
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using the in-memory store; data is lost on restart")
		m := memory.NewStore()
		return &stores{
			professions:   m.Professions(),
			professionals: m.Professionals(),
			calls:         m.ServiceCalls(),
			lifecycle:     m.Lifecycle(),
			messages:      m.Messages(),
			close:         func() {},
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := database.ApplyMigrations(cfg.PostgresDSN, logger); err != nil {
			return nil, err
		}
	}
	pool, err := database.NewDBPool(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}
	return &stores{
		professions:   directorypg.NewPgProfessionRepository(pool, logger),
		professionals: directorypg.NewPgProfessionalRepository(pool, logger),
		calls:         servicecallpg.NewPgServiceCallRepository(pool, logger),
		lifecycle:     servicecallpg.NewPgLifecycleRepository(pool, logger),
		messages:      inboundpg.NewPgMessageRepository(pool, logger),
		close:         pool.Close,
	}, nil
}

func newSender(cfg *config.Config, logger *slog.Logger) provider.Sender {
	if cfg.MessagingAPIURL == "" {
		logger.Warn("MESSAGING_API_URL not set, outbound messages are only recorded in memory")
		return provider.NewMockProvider(logger)
	}
	return provider.NewHTTPProvider(
		logger,
		cfg.MessagingAPIURL,
		cfg.MessagingAPIToken,
		&http.Client{Timeout: cfg.MessagingTimeout()},
		provider.NewLimiter(cfg.MessagingRatePerSecond, cfg.MessagingRateBurst),
	)
}

func newClassifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (inbounddomain.Classifier, error) {
	if cfg.IntentProvider != config.IntentProviderGemini {
		logger.Info("No intent provider configured, storing the fallback intent")
		return classifier.Disabled{}, nil
	}
	client, err := classifier.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	return classifier.NewGeminiClassifier(client.Models, cfg.GeminiModel, logger), nil
}

// watchGroup reports the errgroup's result without blocking the caller.
func watchGroup(g *errgroup.Group) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Wait()
	}()
	return errCh
}
