// Package services содержит бизнес-логику премиум-подписки: статус
// выводится из флага и даты истечения на момент проверки, абсолютного
// значения "премиум" в системе нет.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mrtasks/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	GetOrCreateSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, userUID string, isPremium bool, expiresAt *time.Time) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// PremiumService реализует бизнес-логику премиум-подписки.
type PremiumService struct {
	repo SubscriptionRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewPremiumService создает новый экземпляр PremiumService.
func NewPremiumService(repo SubscriptionRepository, log *slog.Logger) *PremiumService {
	return &PremiumService{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Status возвращает запись подписки и действующий премиум-статус пользователя.
func (s *PremiumService) Status(ctx context.Context, userUID string) (*models.Subscription, bool, error) {
	sub, err := s.repo.GetOrCreateSubscription(ctx, userUID)
	if err != nil {
		return nil, false, err
	}
	return sub, sub.Active(s.now()), nil
}

// Upgrade включает премиум на months месяцев от текущего момента
// и возвращает новую дату истечения.
func (s *PremiumService) Upgrade(ctx context.Context, userUID string, months int) (time.Time, error) {
	expiresAt := s.now().AddDate(0, months, 0)
	if err := s.repo.UpsertSubscription(ctx, userUID, true, &expiresAt); err != nil {
		return time.Time{}, err
	}
	s.log.Info("premium upgraded",
		slog.String("user_uid", userUID), slog.Time("expires_at", expiresAt))
	return expiresAt, nil
}

// Downgrade отключает премиум.
func (s *PremiumService) Downgrade(ctx context.Context, userUID string) error {
	if err := s.repo.UpsertSubscription(ctx, userUID, false, nil); err != nil {
		return err
	}
	s.log.Info("premium downgraded", slog.String("user_uid", userUID))
	return nil
}

// ListUsers возвращает список пользователей для административного обзора.
func (s *PremiumService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// UserDetail возвращает карточку пользователя вместе с его подпиской
// и действующим премиум-статусом.
func (s *PremiumService) UserDetail(ctx context.Context, userUID string) (*models.User, *models.Subscription, bool, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, nil, false, err
	}
	sub, err := s.repo.GetOrCreateSubscription(ctx, userUID)
	if err != nil {
		return nil, nil, false, err
	}
	return user, sub, sub.Active(s.now()), nil
}
