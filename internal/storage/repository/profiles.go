package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/mrtasks/internal/models"
)

const profileColumns = `p.id, p.user_uid, p.company_name, p.logo_url, p.email, p.phone,
			      p.language, p.currency, p.email_verified, p.verification_token,
			      p.reset_token, p.audit_note, p.updated_at, u.last_login_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (*models.Profile, error) {
	p := &models.Profile{}
	var verificationToken, resetToken sql.NullString
	var lastLoginAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UserUID, &p.CompanyName, &p.LogoURL, &p.Email,
		&p.Phone, &p.Language, &p.Currency, &p.EmailVerified, &verificationToken,
		&resetToken, &p.AuditNote, &p.UpdatedAt, &lastLoginAt); err != nil {
		return nil, err
	}
	if verificationToken.Valid {
		p.VerificationToken = &verificationToken.String
	}
	if resetToken.Valid {
		p.ResetToken = &resetToken.String
	}
	if lastLoginAt.Valid {
		p.LastLoginAt = &lastLoginAt.Time
	}
	return p, nil
}

// GetOrCreateProfile возвращает профиль пользователя, при первом обращении
// создавая пустую запись с почтой из учётной записи.
func (s *Storage) GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetOrCreateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	insert := `INSERT INTO profiles (user_uid, email)
			   SELECT uid, email FROM users WHERE uid = $1
			   ON CONFLICT (user_uid) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, insert, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT ` + profileColumns + `
			  FROM profiles p
			  JOIN users u ON u.uid = p.user_uid
			  WHERE p.user_uid = $1`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProfile обновляет отображаемые и контактные поля профиля
// и возвращает количество изменённых строк.
func (s *Storage) UpdateProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) (int, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET company_name = COALESCE(NULLIF($1, ''), company_name),
			      logo_url = COALESCE(NULLIF($2, ''), logo_url),
			      phone = COALESCE(NULLIF($3, ''), phone),
			      language = COALESCE(NULLIF($4, ''), language),
			      currency = COALESCE(NULLIF($5, ''), currency),
			      updated_at = NOW()
			  WHERE user_uid = $6`
	result, err := s.DB.ExecContext(ctx, query,
		req.CompanyName, req.LogoURL, req.Phone, req.Language, req.Currency, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ChangeProfileEmail записывает новую контактную почту профиля, сбрасывает
// флаг подтверждения и сохраняет выданный токен подтверждения.
func (s *Storage) ChangeProfileEmail(ctx context.Context, userUID, email, token string) error {
	const op = "storage.ChangeProfileEmail"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET email = $1,
			      email_verified = FALSE,
			      verification_token = $2,
			      updated_at = NOW()
			  WHERE user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, email, token, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// VerifyProfileEmail подтверждает почту по токену: выставляет флаг
// и очищает токен. Неизвестный токен возвращает ErrNotFound.
func (s *Storage) VerifyProfileEmail(ctx context.Context, token string) error {
	const op = "storage.VerifyProfileEmail"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET email_verified = TRUE,
			      verification_token = NULL,
			      updated_at = NOW()
			  WHERE verification_token = $1`
	result, err := s.DB.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// SetResetToken сохраняет токен сброса пароля в профиле пользователя.
func (s *Storage) SetResetToken(ctx context.Context, userUID, token string) error {
	const op = "storage.SetResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET reset_token = $1,
			      updated_at = NOW()
			  WHERE user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, token, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ConsumeResetToken очищает токен сброса и возвращает UID владельца.
// Неизвестный токен возвращает ErrNotFound.
func (s *Storage) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	const op = "storage.ConsumeResetToken"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET reset_token = NULL,
			      updated_at = NOW()
			  WHERE reset_token = $1
			  RETURNING user_uid`
	var userUID string
	if err := s.DB.QueryRowContext(ctx, query, token).Scan(&userUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// AppendAuditNote дописывает строку в журнал правок профиля.
func (s *Storage) AppendAuditNote(ctx context.Context, userUID, note string) error {
	const op = "storage.AppendAuditNote"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE profiles
			  SET audit_note = CASE WHEN audit_note = '' THEN $1
			                        ELSE audit_note || E'\n' || $1 END,
			      updated_at = NOW()
			  WHERE user_uid = $2`
	_, err := s.DB.ExecContext(ctx, query, note, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
