// Package services содержит бизнес-логику профиля пользователя: ленивое
// создание, обновление реквизитов, смену почты с подтверждением по токену.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/mrtasks/internal/lib/password"
	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// Ошибки уровня сервиса профиля.
var (
	// ErrProfileNotFound профиль не существует.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrTokenNotFound токен подтверждения не найден или уже использован.
	ErrTokenNotFound = errors.New("verification token not found")
	// ErrResetTokenNotFound токен сброса пароля не найден или уже использован.
	ErrResetTokenNotFound = errors.New("reset token not found")
)

// ProfileRepository определяет методы для работы с профилями в хранилище.
type ProfileRepository interface {
	GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) (int, error)
	ChangeProfileEmail(ctx context.Context, userUID, email, token string) error
	VerifyProfileEmail(ctx context.Context, token string) error
	SetResetToken(ctx context.Context, userUID, token string) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
	AppendAuditNote(ctx context.Context, userUID, note string) error
}

// UserRepository определяет доступ к учётным записям для сброса пароля.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// ProfileService реализует бизнес-логику работы с профилем.
type ProfileService struct {
	repo      ProfileRepository
	users     UserRepository
	publisher rabbitmq.Publisher
	log       *slog.Logger
}

// NewProfileService создает новый экземпляр ProfileService.
func NewProfileService(repo ProfileRepository, users UserRepository,
	publisher rabbitmq.Publisher, log *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// Get возвращает профиль пользователя, создавая его при первом обращении.
func (s *ProfileService) Get(ctx context.Context, userUID string) (*models.Profile, error) {
	return s.repo.GetOrCreateProfile(ctx, userUID)
}

// Update обновляет реквизиты и настройки профиля.
func (s *ProfileService) Update(ctx context.Context, userUID string, req models.DummyProfileUpdate) error {
	if _, err := s.repo.GetOrCreateProfile(ctx, userUID); err != nil {
		return err
	}
	rows, err := s.repo.UpdateProfile(ctx, userUID, req)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ChangeEmail записывает новую контактную почту, сбрасывает подтверждение
// и отправляет письмо с новым токеном подтверждения.
func (s *ProfileService) ChangeEmail(ctx context.Context, userUID, username, email string) error {
	profile, err := s.repo.GetOrCreateProfile(ctx, userUID)
	if err != nil {
		return err
	}

	token := uuid.New().String()
	if err := s.repo.ChangeProfileEmail(ctx, userUID, email, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	s.log.Info("profile email changed", slog.String("user_uid", userUID))

	message := models.VerificationEmail{
		Email:    email,
		Username: username,
		Token:    token,
		Language: profile.Language,
	}
	if err := s.publisher.Publish("notifications", rabbitmq.KeyVerification, message); err != nil {
		s.log.Error("failed to publish verification email", slog.Any("err", err))
	}
	return nil
}

// VerifyEmail подтверждает почту по токену из письма.
func (s *ProfileService) VerifyEmail(ctx context.Context, token string) error {
	if err := s.repo.VerifyProfileEmail(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	return nil
}

// ForgotPassword выдаёт токен сброса пароля и отправляет его письмом.
// Неизвестная почта не сообщается наружу: ответ одинаков в обоих случаях.
func (s *ProfileService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	profile, err := s.repo.GetOrCreateProfile(ctx, user.UUID)
	if err != nil {
		return err
	}

	token := uuid.New().String()
	if err := s.repo.SetResetToken(ctx, user.UUID, token); err != nil {
		return err
	}
	s.log.Info("password reset token issued", slog.String("user_uid", user.UUID))

	message := models.PasswordResetEmail{
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
		Language: profile.Language,
	}
	if err := s.publisher.Publish("notifications", rabbitmq.KeyPasswordReset, message); err != nil {
		s.log.Error("failed to publish password reset email", slog.Any("err", err))
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену из письма.
// Токен одноразовый: повторная попытка вернёт ErrResetTokenNotFound.
func (s *ProfileService) ResetPassword(ctx context.Context, token, rawPassword string) error {
	userUID, err := s.repo.ConsumeResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenNotFound
		}
		return err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userUID, hashed); err != nil {
		return err
	}
	s.log.Info("password reset completed", slog.String("user_uid", userUID))
	return nil
}

// AppendAuditNote дописывает строку в административный журнал профиля.
func (s *ProfileService) AppendAuditNote(ctx context.Context, userUID, note string) error {
	return s.repo.AppendAuditNote(ctx, userUID, note)
}
