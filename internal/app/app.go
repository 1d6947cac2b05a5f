package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/internal/infrastructure/config"
	"flightalert-service/internal/infrastructure/oauth"
	"flightalert-service/internal/infrastructure/persistence"
	"flightalert-service/internal/infrastructure/router"
	"flightalert-service/internal/infrastructure/scheduler"
	"flightalert-service/internal/interface/aviation"
	"flightalert-service/internal/interface/gmail"
	handler "flightalert-service/internal/interface/http"
	repo "flightalert-service/internal/interface/repository"
	"flightalert-service/internal/usecase"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
)

const metricsNamespace = "flightalert"

// App holds the wired services shared by the server and the CLI
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	db          *gorm.DB
	mongoClient *mongo.Client

	Flights  repository.FlightRepository
	Inbox    repository.InboxRepository
	Queue    *usecase.JobQueue
	Flight   *usecase.FlightService
	Sync     *usecase.FlightSync
	Override *usecase.AdminOverride
	History  *usecase.HistoryService
}

// New connects the stores and wires every use case
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(metricsNamespace, registry)

	log.Info("Connecting to PostgreSQL")
	db, err := persistence.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		log.Info("Schema migrated")
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		Registry: registry,
		Metrics:  m,
		db:       db,
	}

	log.Info("Connecting to MongoDB")
	mongoClient, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.mongoClient = mongoClient

	// Set up repositories
	flightRepo := repo.NewGormFlightRepository(db)
	bookingRepo := repo.NewGormBookingRepository(db)
	decisionRepo := repo.NewGormDecisionRepository(db)
	jobRepo := repo.NewGormNotificationJobRepository(db)
	overrideRepo := repo.NewGormAdminOverrideRepository(db)
	logRepo := repo.NewMongoNotificationLogRepository(mongoDB)
	inboxRepo := repo.NewMongoInboxRepository(mongoDB)

	notifiers, err := buildNotifiers(ctx, cfg, inboxRepo, log)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	dispatcher := usecase.NewDispatcher(notifiers, usecase.DispatcherOptions{
		SendTimeout:   cfg.SendTimeout,
		RatePerSecond: cfg.DispatchRatePerSecond,
		Burst:         cfg.DispatchBurst,
	}, m, log)
	queue := usecase.NewJobQueue(jobRepo, bookingRepo, logRepo, dispatcher, usecase.JobQueueOptions{
		BatchSize:    cfg.BatchSize,
		StoreTimeout: cfg.StoreTimeout,
	}, m, log)
	cooldown := usecase.NewCooldownGuard(jobRepo)
	orchestrator := usecase.NewOrchestrator(bookingRepo, decisionRepo, cooldown, usecase.NewDecisionEngine(), queue, m, log)
	flightService := usecase.NewFlightService(flightRepo, orchestrator, log)
	source := aviation.NewAviationStackClient(cfg.AviationStackURL, cfg.AviationStackKey, log)

	a.Flights = flightRepo
	a.Inbox = inboxRepo
	a.Queue = queue
	a.Flight = flightService
	a.Sync = usecase.NewFlightSync(flightRepo, source, flightService, log)
	a.Override = usecase.NewAdminOverride(flightRepo, bookingRepo, decisionRepo, overrideRepo, cooldown, queue, log)
	a.History = usecase.NewHistoryService(decisionRepo, jobRepo, logRepo)
	return a, nil
}

// buildNotifiers registers a notifier for every channel that has credentials.
// IN_APP is always available.
func buildNotifiers(ctx context.Context, cfg *config.Config, inbox repository.InboxRepository, log logger.Logger) (map[entity.Channel]repository.Notifier, error) {
	notifiers := map[entity.Channel]repository.Notifier{
		entity.ChannelInApp: repo.NewInboxNotifier(inbox),
	}

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log)
	if gmailOAuth.Configured() {
		notifier, err := gmail.NewGmailNotifier(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailSender, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail notifier: %w", err)
		}
		notifiers[entity.ChannelEmail] = notifier
	} else {
		log.Warn("Gmail credentials missing, EMAIL jobs will fail", "channel", entity.ChannelEmail)
	}

	if cfg.WhatsAppEndpoint != "" {
		notifiers[entity.ChannelWhatsApp] = repo.NewWhatsappRepository(repo.WhatsappConfig{
			BaseURL:     cfg.WhatsAppEndpoint,
			BearerToken: cfg.WhatsAppToken,
			CompanyID:   cfg.WhatsAppCompany,
			AgentID:     cfg.WhatsAppAgent,
			CountryCode: cfg.PhoneCountryCode,
		}, log)
	} else {
		log.Warn("WhatsApp endpoint missing, WHATSAPP jobs will fail", "channel", entity.ChannelWhatsApp)
	}

	if cfg.SMSEndpoint != "" {
		notifiers[entity.ChannelSMS] = repo.NewSMSRepository(repo.SMSConfig{
			Endpoint:    cfg.SMSEndpoint,
			Token:       cfg.SMSToken,
			Sender:      cfg.SMSSender,
			CountryCode: cfg.PhoneCountryCode,
		}, log)
	} else {
		log.Warn("SMS endpoint missing, SMS jobs will fail", "channel", entity.ChannelSMS)
	}

	return notifiers, nil
}

// Handler builds the HTTP API
func (a *App) Handler() http.Handler {
	h := handler.NewAlertHandler(a.Flight, a.Flights, a.Override, a.History, a.Queue, a.Sync, a.Inbox, a.Logger)
	return router.SetupRoutes(chi.NewRouter(), h, router.Tokens{
		Admin: a.Config.AdminToken,
		Cron:  a.Config.CronToken,
	}, a.Metrics, a.Registry, a.Logger)
}

// Scheduler builds the cron scheduler for the worker and the flight sync
func (a *App) Scheduler() *scheduler.AlertScheduler {
	return scheduler.NewAlertScheduler(a.Queue, a.Sync, scheduler.Config{
		WorkerSpec: a.Config.WorkerCronSpec,
		SyncSpec:   a.Config.SyncCronSpec,
	}, a.Logger)
}

// Close releases the store connections
func (a *App) Close(ctx context.Context) {
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.Logger.Error("MongoDB disconnect error", "error", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Logger.Error("PostgreSQL close error", "error", err)
			}
		}
	}
}
