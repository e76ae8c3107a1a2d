package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/mrtasks/internal/models"
)

// GetOrCreateSubscription возвращает запись подписки пользователя,
// при первом обращении создавая неактивную запись.
func (s *Storage) GetOrCreateSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetOrCreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	insert := `INSERT INTO subscriptions (user_uid, is_premium)
			   VALUES ($1, FALSE)
			   ON CONFLICT (user_uid) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, insert, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT id, user_uid, is_premium, expires_at, updated_at
			  FROM subscriptions
			  WHERE user_uid = $1`
	sub := &models.Subscription{}
	var expiresAt sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.IsPremium, &expiresAt,
		&sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if expiresAt.Valid {
		sub.ExpiresAt = &expiresAt.Time
	}
	return sub, nil
}

// UpsertSubscription записывает состояние подписки пользователя.
// expiresAt = nil означает бессрочную подписку при isPremium = true
// либо отсутствие подписки при isPremium = false.
func (s *Storage) UpsertSubscription(ctx context.Context, userUID string, isPremium bool, expiresAt *time.Time) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, is_premium, expires_at, updated_at)
			  VALUES ($1, $2, $3, NOW())
			  ON CONFLICT (user_uid) DO UPDATE
			  SET is_premium = EXCLUDED.is_premium,
			      expires_at = EXCLUDED.expires_at,
			      updated_at = NOW()`
	_, err := s.DB.ExecContext(ctx, query, userUID, isPremium, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindPremiumExpiringSoon находит активные подписки, истекающие в ближайшие
// withinDays дней, вместе с данными для письма-напоминания.
func (s *Storage) FindPremiumExpiringSoon(ctx context.Context, withinDays int) ([]*models.PremiumExpiryNotice, error) {
	const op = "storage.FindPremiumExpiringSoon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, u.username, COALESCE(p.language, 'en'), s.expires_at
			  FROM subscriptions s
			  JOIN users u ON u.uid = s.user_uid
			  LEFT JOIN profiles p ON p.user_uid = s.user_uid
			  WHERE s.is_premium = TRUE
			    AND s.expires_at IS NOT NULL
			    AND s.expires_at > NOW()
			    AND s.expires_at <= NOW() + ($1 || ' days')::INTERVAL`
	rows, err := s.DB.QueryContext(ctx, query, withinDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PremiumExpiryNotice
	for rows.Next() {
		var n models.PremiumExpiryNotice
		if err = rows.Scan(&n.Email, &n.Username, &n.Language, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
