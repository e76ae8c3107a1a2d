package mrtasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mrtasks/internal/cache"
	"github.com/magabrotheeeer/mrtasks/internal/config"
	"github.com/magabrotheeeer/mrtasks/internal/lib/i18n"
	"github.com/magabrotheeeer/mrtasks/internal/lib/jwt"
	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/migrations"
	"github.com/magabrotheeeer/mrtasks/internal/ratelimit"
	authservice "github.com/magabrotheeeer/mrtasks/internal/services/auth"
	clientservice "github.com/magabrotheeeer/mrtasks/internal/services/client"
	invoiceservice "github.com/magabrotheeeer/mrtasks/internal/services/invoice"
	premiumservice "github.com/magabrotheeeer/mrtasks/internal/services/premium"
	profileservice "github.com/magabrotheeeer/mrtasks/internal/services/profile"
	schedulerservice "github.com/magabrotheeeer/mrtasks/internal/services/scheduler"
	taskservice "github.com/magabrotheeeer/mrtasks/internal/services/task"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// App собирает HTTP-сервер, хранилище и фоновые задачи основного сервиса.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	rabbit    *amqp.Connection
	channel   *amqp.Channel
	scheduler *schedulerservice.SchedulerService
}

// New инициализирует зависимости и собирает приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := &rabbitmq.ChannelPublisher{Ch: ch}

	catalog, err := i18n.NewCatalog()
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	violationLog := ratelimit.NewViolationLog()
	limiter := ratelimit.New(violationLog)

	services := Services{
		Auth:    authservice.NewAuthService(db, jwtMaker, logger),
		Task:    taskservice.NewTaskService(db, db, db, cacheRedis, logger),
		Client:  clientservice.NewClientService(db, db, logger),
		Invoice: invoiceservice.NewInvoiceService(db, db, db, catalog, publisher, logger),
		Profile: profileservice.NewProfileService(db, db, publisher, logger),
		Premium: premiumservice.NewPremiumService(db, logger),
	}
	scheduler := schedulerservice.NewSchedulerService(db, violationLog, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, services, limiter)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		rabbit:    conn,
		channel:   ch,
		scheduler: scheduler,
	}, nil
}

// Run запускает фоновые задачи и HTTP-сервер, завершает их по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.scheduler.RunViolationLogExport(ctx)
	go a.scheduler.RunPremiumExpiryScan(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.channel.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.rabbit.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		a.db.DB.Close()
		return err
	}
}
