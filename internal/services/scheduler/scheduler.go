// Package services содержит фоновые задачи сервиса: почасовую выгрузку
// журнала отказов лимитера и ежедневный поиск истекающих премиум-подписок.
// Обе задачи публикуют уведомления в RabbitMQ и никогда не завершают процесс.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/lib/sl"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/ratelimit"
)

// За сколько дней до истечения подписки отправляется напоминание.
const premiumExpiryWindowDays = 3

// SubscriptionRepository определяет выборки подписок для напоминаний.
type SubscriptionRepository interface {
	FindPremiumExpiringSoon(ctx context.Context, withinDays int) ([]*models.PremiumExpiryNotice, error)
}

// SchedulerService запускает периодические задачи сервиса.
type SchedulerService struct {
	repo      SubscriptionRepository
	log       *slog.Logger
	violation *ratelimit.ViolationLog
	publisher rabbitmq.Publisher
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, violation *ratelimit.ViolationLog,
	publisher rabbitmq.Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:      repo,
		log:       log,
		violation: violation,
		publisher: publisher,
		now:       time.Now,
	}
}

// RunViolationLogExport раз в час выгружает журнал отказов лимитера
// и публикует его CSV-выгрузку. Работает до отмены контекста.
func (s *SchedulerService) RunViolationLogExport(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.exportViolationLog()
		case <-ctx.Done():
			return
		}
	}
}

func (s *SchedulerService) exportViolationLog() {
	entries := s.violation.Drain()
	if len(entries) == 0 {
		return
	}
	s.log.Info("exporting rate limit violations", "count", len(entries))

	csvData, err := ratelimit.ViolationsCSV(entries)
	if err != nil {
		s.log.Error("failed to serialize violations", sl.Err(err))
		return
	}
	message := models.ViolationLogExport{
		Date: s.now(),
		CSV:  csvData,
	}
	if err := s.publisher.Publish("notifications", rabbitmq.KeyViolationLog, message); err != nil {
		s.log.Error("failed to publish violation log export", sl.Err(err))
	}
}

// RunPremiumExpiryScan раз в сутки ищет подписки, истекающие в ближайшие
// дни, и публикует напоминание для каждого пользователя.
func (s *SchedulerService) RunPremiumExpiryScan(ctx context.Context) {
	s.scanPremiumExpiry(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.scanPremiumExpiry(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SchedulerService) scanPremiumExpiry(ctx context.Context) {
	s.log.Info("starting premium expiry scan")
	notices, err := s.repo.FindPremiumExpiringSoon(ctx, premiumExpiryWindowDays)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
		return
	}
	if len(notices) == 0 {
		s.log.Info("no expiring subscriptions found")
		return
	}
	s.log.Info("found expiring subscriptions", "count", len(notices))
	for _, notice := range notices {
		if err := s.publisher.Publish("notifications", rabbitmq.KeyPremiumExpiry, notice); err != nil {
			s.log.Error("failed to publish expiry notice", sl.Err(err))
		}
	}
}
