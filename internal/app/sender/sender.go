// Package sender собирает сервис отправки почтовых уведомлений:
// подключение к RabbitMQ, SMTP-транспорт и подписку на очереди.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mrtasks/internal/config"
	"github.com/magabrotheeeer/mrtasks/internal/lib/i18n"
	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/mrtasks/internal/services/sender"
)

// App держит соединение с брокером и сервис отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New инициализирует зависимости и собирает приложение.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	catalog, err := i18n.NewCatalog()
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTPConnection, logger)
	senderService := senderservice.NewSenderService(transport, catalog, cfg.AdminEmail, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run подписывается на очереди уведомлений и работает до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	consumers := []struct {
		queue   string
		handler func([]byte) error
	}{
		{rabbitmq.QueueViolationLog, a.senderService.SendViolationLogExport},
		{rabbitmq.QueueVerification, a.senderService.SendVerificationEmail},
		{rabbitmq.QueuePasswordReset, a.senderService.SendPasswordResetEmail},
		{rabbitmq.QueuePremiumExpiry, a.senderService.SendPremiumExpiryNotice},
		{rabbitmq.QueueInvoice, a.senderService.SendInvoiceEmail},
	}
	for _, c := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, c.queue, c.handler); err != nil {
			a.logger.Error("failed to start consumer",
				slog.String("queue", c.queue), slog.Any("err", err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
