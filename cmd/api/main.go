package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civic-report-service/internal/api/http"
	"github.com/spec-kit/civic-report-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-report-service/internal/auth"
	"github.com/spec-kit/civic-report-service/internal/classify"
	"github.com/spec-kit/civic-report-service/internal/config"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/fingerprint"
	"github.com/spec-kit/civic-report-service/internal/notify"
	"github.com/spec-kit/civic-report-service/internal/observability"
	"github.com/spec-kit/civic-report-service/internal/persistence"
	"github.com/spec-kit/civic-report-service/internal/service"
	"github.com/spec-kit/civic-report-service/internal/store"
	"github.com/spec-kit/civic-report-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mongoConn *persistence.Mongo
	var ticketStore store.TicketStore
	var userStore store.UserStore

	switch cfg.Intake.StoreDriver {
	case config.StoreDriverMongo:
		mongoConn, err = persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			logger.Fatal("failed to connect mongo", zap.Error(err))
		}
		defer mongoConn.Close(context.Background())

		ticketStore, err = store.NewMongoTicketStore(ctx, mongoConn.Database)
		if err != nil {
			logger.Fatal("failed to init ticket store", zap.Error(err))
		}
		userStore, err = store.NewMongoUserStore(ctx, mongoConn.Database)
		if err != nil {
			logger.Fatal("failed to init user store", zap.Error(err))
		}
	default:
		ticketStore = store.NewMemoryTicketStore()
		userStore = store.NewMemoryUserStore()
	}

	redisConn := persistence.NewRedis(cfg.Redis, logger)
	defer redisConn.Close()
	ticketStore = store.NewCachedTicketStore(ticketStore, redisConn.Client, cfg.Redis.CacheTTL(), logger)

	var provider classify.Provider
	if cfg.Classifier.APIKey != "" {
		provider = classify.NewGeminiProvider(cfg.Classifier.APIKey, cfg.Classifier.Model, cfg.Classifier.Endpoint, cfg.Classifier.Timeout())
	} else {
		logger.Warn("classifier api key not set, using rule-based classification only")
	}
	classifier := classify.NewAdapter(provider, cfg.Classifier.Timeout(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventDuplicateMerged, events.EventStatusChanged} {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			metrics.RecordTicket(string(event.Type))
			return nil
		})
	}

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Classifier:   classifier,
		Fingerprints: fingerprint.New(cfg.Intake.FingerprintPrecision),
		TicketStore:  ticketStore,
		Dispatcher:   dispatcher,
		Logger:       logger,
		StoreRetries: cfg.Intake.StoreRetries,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketStore:  ticketStore,
		Dispatcher:   dispatcher,
		Logger:       logger,
		StoreRetries: cfg.Intake.StoreRetries,
	})
	authService := service.NewAuthService(cfg.Auth, userStore)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Email:  notify.NewEmailSender(cfg.Email, logger),
		SMS:    notify.NewSMSSender(cfg.SMS, logger),
		Logger: logger,
	})
	worker.StartNotificationWorker(notificationService, dispatcher)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userStore)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongoConn, redisConn),
		Reports:        handlers.NewReportsHandler(intakeService),
		Webhooks:       handlers.NewWebhooksHandler(intakeService, cfg.SMS.WebhookSecret),
		Tickets:        handlers.NewTicketsHandler(lifecycleService),
		Users:          handlers.NewUsersHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
