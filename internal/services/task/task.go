// Package services содержит бизнес-логику управления задачами: создание
// с лимитом для неподтверждённой почты, доска с порядком колонок,
// скрытие, поиск и сводный отчёт. Списки задач кешируются на час.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mrtasks/internal/models"
	"github.com/magabrotheeeer/mrtasks/internal/storage/repository"
)

// Лимит задач для пользователя с неподтверждённой почтой.
const unverifiedTaskLimit = 10

// Ошибки уровня сервиса задач.
var (
	// ErrTaskNotFound задача не существует или принадлежит другому пользователю.
	ErrTaskNotFound = errors.New("task not found")
	// ErrClientNotFound указанный в задаче клиент не найден у пользователя.
	ErrClientNotFound = errors.New("client not found")
	// ErrUnverifiedLimit достигнут лимит задач до подтверждения почты.
	ErrUnverifiedLimit = errors.New("task limit for unverified email reached")
)

// TaskRepository определяет методы для работы с задачами в хранилище.
type TaskRepository interface {
	CreateTask(ctx context.Context, task models.Task) (int, error)
	GetTask(ctx context.Context, id int, userUID string) (*models.Task, error)
	ListTasks(ctx context.Context, userUID string, includeHidden bool) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task models.Task, id int, userUID string) (int, error)
	RemoveTask(ctx context.Context, id int, userUID string) (int, error)
	SetTaskHidden(ctx context.Context, id int, userUID string, hidden bool) (int, error)
	ReorderTasks(ctx context.Context, userUID string, ids []int) error
	SearchTasks(ctx context.Context, userUID, substring string) ([]*models.Task, error)
	CountTasks(ctx context.Context, userUID string) (int, error)
}

// ClientReader возвращает клиента пользователя для привязки к задаче.
type ClientReader interface {
	GetClient(ctx context.Context, id int, userUID string) (*models.Client, error)
}

// ProfileReader возвращает профиль пользователя, создавая его при первом обращении.
type ProfileReader interface {
	GetOrCreateProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// TaskService реализует бизнес-логику работы с задачами, включая кеширование.
type TaskService struct {
	repo     TaskRepository
	clients  ClientReader
	profiles ProfileReader
	cache    Cache
	log      *slog.Logger
}

// NewTaskService создает новый экземпляр TaskService.
func NewTaskService(repo TaskRepository, clients ClientReader, profiles ProfileReader,
	cache Cache, log *slog.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		clients:  clients,
		profiles: profiles,
		cache:    cache,
		log:      log,
	}
}

func cacheKey(userUID string) string {
	return fmt.Sprintf("tasks:%s", userUID)
}

func (s *TaskService) invalidate(userUID string) {
	key := cacheKey(userUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
	}
}

// buildTask преобразует провалидированный запрос в модель задачи.
func buildTask(userUID string, req models.DummyTask, clientName string) (models.Task, error) {
	task := models.Task{
		UserUID:        userUID,
		ClientID:       req.ClientID,
		ClientName:     clientName,
		Title:          req.Title,
		Description:    req.Description,
		Billable:       req.Billable,
		HoursWorked:    req.HoursWorked,
		HourlyRate:     req.HourlyRate,
		FixedAmount:    req.FixedAmount,
		BillingType:    req.BillingType,
		AdvancePayment: req.AdvancePayment,
		Status:         req.Status,
		Color:          req.Color,
	}
	if task.BillingType == "" {
		task.BillingType = models.BillingHourly
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if req.Deadline != "" {
		deadline, err := time.Parse("2006-01-02", req.Deadline)
		if err != nil {
			return models.Task{}, fmt.Errorf("invalid deadline: %w", err)
		}
		task.Deadline = &deadline
	}
	return task, nil
}

// resolveClientName возвращает имя клиента из запроса задачи.
// Чужой или несуществующий клиент превращается в ErrClientNotFound.
func (s *TaskService) resolveClientName(ctx context.Context, userUID string, clientID *int) (string, error) {
	if clientID == nil {
		return "", nil
	}
	client, err := s.clients.GetClient(ctx, *clientID, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrClientNotFound
		}
		return "", err
	}
	return client.Name, nil
}

// Create создает новую задачу пользователя и возвращает её ID.
// До подтверждения почты пользователь ограничен unverifiedTaskLimit задачами.
func (s *TaskService) Create(ctx context.Context, userUID string, req models.DummyTask) (int, error) {
	profile, err := s.profiles.GetOrCreateProfile(ctx, userUID)
	if err != nil {
		return 0, err
	}
	if !profile.EmailVerified {
		count, err := s.repo.CountTasks(ctx, userUID)
		if err != nil {
			return 0, err
		}
		if count >= unverifiedTaskLimit {
			return 0, ErrUnverifiedLimit
		}
	}

	clientName, err := s.resolveClientName(ctx, userUID, req.ClientID)
	if err != nil {
		return 0, err
	}
	task, err := buildTask(userUID, req, clientName)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new task", slog.Int("id", id))
	s.invalidate(userUID)
	return id, nil
}

// List возвращает доску задач пользователя, используя кеш или репозиторий.
// Кешируется только основной вид без скрытых задач.
func (s *TaskService) List(ctx context.Context, userUID string, includeHidden bool) ([]*models.Task, error) {
	if includeHidden {
		return s.repo.ListTasks(ctx, userUID, true)
	}

	var result []*models.Task
	key := cacheKey(userUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", key), slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListTasks(ctx, userUID, false)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// Read возвращает задачу по ID в пределах владельца.
func (s *TaskService) Read(ctx context.Context, id int, userUID string) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update обновляет задачу пользователя.
func (s *TaskService) Update(ctx context.Context, req models.DummyTask, id int, userUID string) error {
	clientName, err := s.resolveClientName(ctx, userUID, req.ClientID)
	if err != nil {
		return err
	}
	task, err := buildTask(userUID, req, clientName)
	if err != nil {
		return err
	}

	rows, err := s.repo.UpdateTask(ctx, task, id, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	s.invalidate(userUID)
	return nil
}

// Remove удаляет задачу пользователя.
func (s *TaskService) Remove(ctx context.Context, id int, userUID string) error {
	rows, err := s.repo.RemoveTask(ctx, id, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	s.invalidate(userUID)
	return nil
}

// SetHidden скрывает задачу с доски или возвращает её обратно.
func (s *TaskService) SetHidden(ctx context.Context, id int, userUID string, hidden bool) error {
	rows, err := s.repo.SetTaskHidden(ctx, id, userUID, hidden)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	s.invalidate(userUID)
	return nil
}

// Reorder присваивает перечисленным задачам позиции 0..N-1 в порядке
// перечисления. Задачи вне списка сохраняют свои позиции.
func (s *TaskService) Reorder(ctx context.Context, userUID string, ids []int) error {
	if err := s.repo.ReorderTasks(ctx, userUID, ids); err != nil {
		return err
	}
	s.invalidate(userUID)
	return nil
}

// Search ищет задачи пользователя по подстроке в заголовке или имени клиента.
func (s *TaskService) Search(ctx context.Context, userUID, substring string) ([]*models.Task, error) {
	return s.repo.SearchTasks(ctx, userUID, substring)
}

// Report строит сводку по всем задачам пользователя, включая скрытые.
// Денежные суммы считаются только по оплачиваемым задачам.
func (s *TaskService) Report(ctx context.Context, userUID string) (*models.TaskReport, error) {
	tasks, err := s.repo.ListTasks(ctx, userUID, true)
	if err != nil {
		return nil, err
	}

	report := &models.TaskReport{TotalTasks: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusTodo:
			report.TodoCount++
		case models.StatusInProgress:
			report.InProgressCount++
		case models.StatusCompleted:
			report.CompletedCount++
		}
		if task.Billable {
			report.BillableTotal += task.Total()
			report.AdvanceTotal += task.AdvancePayment
			report.RemainingDue += task.RemainingDue()
		}
	}
	return report, nil
}
