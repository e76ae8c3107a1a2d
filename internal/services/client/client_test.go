package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateClient(ctx context.Context, client models.Client) (int, error) {
	args := m.Called(ctx, client)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetClient(ctx context.Context, id int, userUID string) (*models.Client, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}
func (m *RepoMock) ListClients(ctx context.Context, userUID string) ([]*models.Client, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}
func (m *RepoMock) UpdateClient(ctx context.Context, req models.DummyClient, id int, userUID string) (int, error) {
	args := m.Called(ctx, req, id, userUID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveClient(ctx context.Context, id int, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) SearchClients(ctx context.Context, userUID, substring string) ([]*models.Client, error) {
	args := m.Called(ctx, userUID, substring)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}
func (m *RepoMock) CountClients(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}

type ProfilesMock struct{ mock.Mock }

func (m *ProfilesMock) GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUserUID = "4f4bc7e0-9313-4ad8-b2d0-a35a94f0f702"

func TestClientService_Create(t *testing.T) {
	req := models.DummyClient{Name: "Acme", Email: "billing@acme.test", Company: "Acme LLC"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, p *ProfilesMock)
		wantID     int
		wantErr    error
	}{
		{
			name: "success with verified email",
			setupMocks: func(r *RepoMock, p *ProfilesMock) {
				p.On("GetOrCreateProfile", mock.Anything, testUserUID).
					Return(&models.Profile{UserUID: testUserUID, EmailVerified: true}, nil).Once()
				r.On("CreateClient", mock.Anything, mock.MatchedBy(func(c models.Client) bool {
					return c.Name == "Acme" && c.UserUID == testUserUID
				})).Return(11, nil).Once()
			},
			wantID: 11,
		},
		{
			name: "unverified email below limit",
			setupMocks: func(r *RepoMock, p *ProfilesMock) {
				p.On("GetOrCreateProfile", mock.Anything, testUserUID).
					Return(&models.Profile{UserUID: testUserUID}, nil).Once()
				r.On("CountClients", mock.Anything, testUserUID).Return(4, nil).Once()
				r.On("CreateClient", mock.Anything, mock.Anything).Return(12, nil).Once()
			},
			wantID: 12,
		},
		{
			name: "unverified email at limit",
			setupMocks: func(r *RepoMock, p *ProfilesMock) {
				p.On("GetOrCreateProfile", mock.Anything, testUserUID).
					Return(&models.Profile{UserUID: testUserUID}, nil).Once()
				r.On("CountClients", mock.Anything, testUserUID).Return(5, nil).Once()
			},
			wantErr: ErrUnverifiedLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			profiles := new(ProfilesMock)
			tt.setupMocks(repo, profiles)

			svc := NewClientService(repo, profiles, newNoopLogger())
			id, err := svc.Create(context.Background(), testUserUID, req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			repo.AssertExpectations(t)
			profiles.AssertExpectations(t)
		})
	}
}

func TestClientService_Read_NotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetClient", mock.Anything, 7, testUserUID).Return(nil, repository.ErrNotFound).Once()

	svc := NewClientService(repo, nil, newNoopLogger())
	_, err := svc.Read(context.Background(), 7, testUserUID)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_Update_NotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateClient", mock.Anything, mock.Anything, 7, testUserUID).Return(0, nil).Once()

	svc := NewClientService(repo, nil, newNoopLogger())
	err := svc.Update(context.Background(), models.DummyClient{Name: "Other"}, 7, testUserUID)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_Remove(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		repoErr error
		wantErr error
	}{
		{name: "success", rows: 1},
		{name: "referenced by tasks", repoErr: repository.ErrClientHasTasks, wantErr: ErrClientHasTasks},
		{name: "not found", rows: 0, wantErr: ErrClientNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("RemoveClient", mock.Anything, 3, testUserUID).Return(tt.rows, tt.repoErr).Once()

			svc := NewClientService(repo, nil, newNoopLogger())
			err := svc.Remove(context.Background(), 3, testUserUID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestClientService_Search(t *testing.T) {
	repo := new(RepoMock)
	found := []*models.Client{{ID: 1, Name: "Landmark Studio"}}
	repo.On("SearchClients", mock.Anything, testUserUID, "land").Return(found, nil).Once()

	svc := NewClientService(repo, nil, newNoopLogger())
	got, err := svc.Search(context.Background(), testUserUID, "land")
	require.NoError(t, err)
	assert.Equal(t, found, got)
}
