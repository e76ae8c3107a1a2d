// Package services содержит бизнес-логику управления клиентами пользователя.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// Лимит клиентов для пользователя с неподтверждённой почтой.
const unverifiedClientLimit = 5

// Ошибки уровня сервиса клиентов.
var (
	// ErrClientNotFound клиент не существует или принадлежит другому пользователю.
	ErrClientNotFound = errors.New("client not found")
	// ErrClientHasTasks клиента нельзя удалить, пока на него ссылаются задачи.
	ErrClientHasTasks = errors.New("client has tasks")
	// ErrUnverifiedLimit достигнут лимит клиентов до подтверждения почты.
	ErrUnverifiedLimit = errors.New("client limit for unverified email reached")
)

// ClientRepository определяет методы для работы с клиентами в хранилище.
type ClientRepository interface {
	CreateClient(ctx context.Context, client models.Client) (int, error)
	GetClient(ctx context.Context, id int, userUID string) (*models.Client, error)
	ListClients(ctx context.Context, userUID string) ([]*models.Client, error)
	UpdateClient(ctx context.Context, req models.DummyClient, id int, userUID string) (int, error)
	RemoveClient(ctx context.Context, id int, userUID string) (int, error)
	SearchClients(ctx context.Context, userUID, substring string) ([]*models.Client, error)
	CountClients(ctx context.Context, userUID string) (int, error)
}

// ProfileReader возвращает профиль пользователя, создавая его при первом обращении.
type ProfileReader interface {
	GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// ClientService реализует бизнес-логику работы с клиентами.
type ClientService struct {
	repo     ClientRepository
	profiles ProfileReader
	log      *slog.Logger
}

// NewClientService создает новый экземпляр ClientService.
func NewClientService(repo ClientRepository, profiles ProfileReader, log *slog.Logger) *ClientService {
	return &ClientService{
		repo:     repo,
		profiles: profiles,
		log:      log,
	}
}

// Create создает нового клиента пользователя и возвращает его ID.
// До подтверждения почты пользователь ограничен unverifiedClientLimit клиентами.
func (s *ClientService) Create(ctx context.Context, userUID string, req models.DummyClient) (int, error) {
	profile, err := s.profiles.GetOrCreateProfile(ctx, userUID)
	if err != nil {
		return 0, err
	}
	if !profile.EmailVerified {
		count, err := s.repo.CountClients(ctx, userUID)
		if err != nil {
			return 0, err
		}
		if count >= unverifiedClientLimit {
			return 0, ErrUnverifiedLimit
		}
	}

	client := models.Client{
		UserUID: userUID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
	}
	id, err := s.repo.CreateClient(ctx, client)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new client", slog.Int("id", id))
	return id, nil
}

// Read возвращает клиента по ID в пределах владельца.
func (s *ClientService) Read(ctx context.Context, id int, userUID string) (*models.Client, error) {
	client, err := s.repo.GetClient(ctx, id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// List возвращает список клиентов пользователя.
func (s *ClientService) List(ctx context.Context, userUID string) ([]*models.Client, error) {
	return s.repo.ListClients(ctx, userUID)
}

// Update обновляет данные клиента пользователя.
func (s *ClientService) Update(ctx context.Context, req models.DummyClient, id int, userUID string) error {
	rows, err := s.repo.UpdateClient(ctx, req, id, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Remove удаляет клиента пользователя. Пока на клиента ссылаются задачи,
// удаление возвращает ErrClientHasTasks.
func (s *ClientService) Remove(ctx context.Context, id int, userUID string) error {
	rows, err := s.repo.RemoveClient(ctx, id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrClientHasTasks) {
			return ErrClientHasTasks
		}
		return err
	}
	if rows == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Search ищет клиентов пользователя по подстроке в имени или компании.
func (s *ClientService) Search(ctx context.Context, userUID, substring string) ([]*models.Client, error) {
	return s.repo.SearchClients(ctx, userUID, substring)
}
