package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mrtasks/internal/lib/password"
	"github.com/magabrotheeeer/mrtasks/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *RepoMock) UpdateProfile(ctx context.Context, userUID string, req models.DummyProfileUpdate) (int, error) {
	args := m.Called(ctx, userUID, req)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ChangeProfileEmail(ctx context.Context, userUID, email, token string) error {
	return m.Called(ctx, userUID, email, token).Error(0)
}
func (m *RepoMock) VerifyProfileEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
func (m *RepoMock) SetResetToken(ctx context.Context, userUID, token string) error {
	return m.Called(ctx, userUID, token).Error(0)
}
func (m *RepoMock) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) AppendAuditNote(ctx context.Context, userUID, note string) error {
	return m.Called(ctx, userUID, note).Error(0)
}

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *UsersMock) UpdatePassword(ctx context.Context, userUID, passwordHash string) error {
	return m.Called(ctx, userUID, passwordHash).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(exchange, routingkey string, message any) error {
	return m.Called(exchange, routingkey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUserUID = "b8a9c1d2-7e4f-4c3a-9d0b-5e6f7a8b9c0d"

func TestProfileService_Update(t *testing.T) {
	repo := new(RepoMock)
	req := models.DummyProfileUpdate{CompanyName: "Freelance Co", Language: "es"}

	repo.On("GetOrCreateProfile", mock.Anything, testUserUID).
		Return(&models.Profile{UserUID: testUserUID}, nil).Once()
	repo.On("UpdateProfile", mock.Anything, testUserUID, req).Return(1, nil).Once()

	svc := NewProfileService(repo, new(UsersMock), new(PublisherMock), newNoopLogger())
	require.NoError(t, svc.Update(context.Background(), testUserUID, req))
	repo.AssertExpectations(t)
}

func TestProfileService_ChangeEmail_PublishesVerification(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)

	repo.On("GetOrCreateProfile", mock.Anything, testUserUID).
		Return(&models.Profile{UserUID: testUserUID, Language: "ru"}, nil).Once()

	var issuedToken string
	repo.On("ChangeProfileEmail", mock.Anything, testUserUID, "new@example.com", mock.Anything).
		Run(func(args mock.Arguments) {
			issuedToken = args.String(3)
		}).Return(nil).Once()

	publisher.On("Publish", "notifications", rabbitmq.KeyVerification,
		mock.MatchedBy(func(msg any) bool {
			email, ok := msg.(models.VerificationEmail)
			return ok && email.Email == "new@example.com" &&
				email.Username == "alice" && email.Language == "ru" &&
				email.Token == issuedToken
		})).Return(nil).Once()

	svc := NewProfileService(repo, new(UsersMock), publisher, newNoopLogger())
	err := svc.ChangeEmail(context.Background(), testUserUID, "alice", "new@example.com")
	require.NoError(t, err)

	_, parseErr := uuid.Parse(issuedToken)
	assert.NoError(t, parseErr)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProfileService_ChangeEmail_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)

	repo.On("GetOrCreateProfile", mock.Anything, testUserUID).
		Return(&models.Profile{UserUID: testUserUID, Language: "en"}, nil).Once()
	repo.On("ChangeProfileEmail", mock.Anything, testUserUID, "new@example.com", mock.Anything).
		Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	svc := NewProfileService(repo, new(UsersMock), publisher, newNoopLogger())
	err := svc.ChangeEmail(context.Background(), testUserUID, "alice", "new@example.com")
	require.NoError(t, err)
}

func TestProfileService_ForgotPassword(t *testing.T) {
	stored := &models.User{UUID: testUserUID, Email: "alice@example.com", Username: "alice"}

	t.Run("issues token and publishes email", func(t *testing.T) {
		repo := new(RepoMock)
		users := new(UsersMock)
		publisher := new(PublisherMock)

		users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()
		repo.On("GetOrCreateProfile", mock.Anything, testUserUID).
			Return(&models.Profile{UserUID: testUserUID, Language: "es"}, nil).Once()

		var issuedToken string
		repo.On("SetResetToken", mock.Anything, testUserUID, mock.Anything).
			Run(func(args mock.Arguments) {
				issuedToken = args.String(2)
			}).Return(nil).Once()

		publisher.On("Publish", "notifications", rabbitmq.KeyPasswordReset,
			mock.MatchedBy(func(msg any) bool {
				email, ok := msg.(models.PasswordResetEmail)
				return ok && email.Email == "alice@example.com" &&
					email.Username == "alice" && email.Language == "es" &&
					email.Token == issuedToken
			})).Return(nil).Once()

		svc := NewProfileService(repo, users, publisher, newNoopLogger())
		require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

		_, parseErr := uuid.Parse(issuedToken)
		assert.NoError(t, parseErr)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		users := new(UsersMock)
		publisher := new(PublisherMock)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, repository.ErrNotFound).Once()

		svc := NewProfileService(new(RepoMock), users, publisher, newNoopLogger())
		require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publish failure is not fatal", func(t *testing.T) {
		repo := new(RepoMock)
		users := new(UsersMock)
		publisher := new(PublisherMock)

		users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(stored, nil).Once()
		repo.On("GetOrCreateProfile", mock.Anything, testUserUID).
			Return(&models.Profile{UserUID: testUserUID, Language: "en"}, nil).Once()
		repo.On("SetResetToken", mock.Anything, testUserUID, mock.Anything).Return(nil).Once()
		publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError).Once()

		svc := NewProfileService(repo, users, publisher, newNoopLogger())
		require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))
	})
}

func TestProfileService_ResetPassword(t *testing.T) {
	t.Run("success replaces password hash", func(t *testing.T) {
		repo := new(RepoMock)
		users := new(UsersMock)

		repo.On("ConsumeResetToken", mock.Anything, "token-1").Return(testUserUID, nil).Once()
		users.On("UpdatePassword", mock.Anything, testUserUID,
			mock.MatchedBy(func(hash string) bool {
				return password.CompareHash(hash, "newsecret42") == nil
			})).Return(nil).Once()

		svc := NewProfileService(repo, users, new(PublisherMock), newNoopLogger())
		require.NoError(t, svc.ResetPassword(context.Background(), "token-1", "newsecret42"))
		users.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ConsumeResetToken", mock.Anything, "stale").
			Return("", repository.ErrNotFound).Once()

		svc := NewProfileService(repo, new(UsersMock), new(PublisherMock), newNoopLogger())
		err := svc.ResetPassword(context.Background(), "stale", "newsecret42")
		assert.ErrorIs(t, err, ErrResetTokenNotFound)
	})
}

func TestProfileService_VerifyEmail(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "success"},
		{name: "unknown token", repoErr: repository.ErrNotFound, wantErr: ErrTokenNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("VerifyProfileEmail", mock.Anything, "token-1").Return(tt.repoErr).Once()

			svc := NewProfileService(repo, new(UsersMock), new(PublisherMock), newNoopLogger())
			err := svc.VerifyEmail(context.Background(), "token-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
