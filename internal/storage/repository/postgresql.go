// Package repository реализует хранилище данных на основе PostgreSQL
// для задач, клиентов, профилей и подписок пользователей. Предоставляет
// методы создания, чтения, обновления, удаления и поиска записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Типизированные ошибки хранилища. Сервисный слой сопоставляет их
// с кодами ответов, не заглядывая в детали драйвера.
var (
	// ErrNotFound запись не существует либо принадлежит другому пользователю.
	ErrNotFound = errors.New("record not found")
	// ErrClientHasTasks клиента нельзя удалить, пока на него ссылаются задачи.
	ErrClientHasTasks = errors.New("client is referenced by tasks")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с задачами, клиентами, профилями и подписками.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'tasks'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table tasks missing or query error: %w", err)
	}
	return nil
}
