package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/mrtasks/internal/models"
)

// CreateClient вставляет нового клиента пользователя и возвращает его ID.
func (s *Storage) CreateClient(ctx context.Context, client models.Client) (int, error) {
	const op = "storage.CreateClient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO clients (user_uid, name, email, phone, company)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		client.UserUID, client.Name, client.Email, client.Phone,
		client.Company).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetClient возвращает клиента по ID в пределах владельца.
// Чужой или несуществующий ID возвращает ErrNotFound.
func (s *Storage) GetClient(ctx context.Context, id int, userUID string) (*models.Client, error) {
	const op = "storage.GetClient"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, email, phone, company, created_at
			  FROM clients
			  WHERE id = $1 AND user_uid = $2`
	var c models.Client
	row := s.DB.QueryRowContext(ctx, query, id, userUID)
	if err := row.Scan(&c.ID, &c.UserUID, &c.Name, &c.Email, &c.Phone,
		&c.Company, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// ListClients возвращает список клиентов пользователя.
func (s *Storage) ListClients(ctx context.Context, userUID string) ([]*models.Client, error) {
	const op = "storage.ListClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, email, phone, company, created_at
			  FROM clients
			  WHERE user_uid = $1
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.UserUID, &c.Name, &c.Email, &c.Phone,
			&c.Company, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateClient обновляет данные клиента в пределах владельца
// и возвращает количество изменённых строк.
func (s *Storage) UpdateClient(ctx context.Context, req models.DummyClient, id int, userUID string) (int, error) {
	const op = "storage.UpdateClient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE clients
			  SET name = $1, email = $2, phone = $3, company = $4
			  WHERE id = $5 AND user_uid = $6`
	result, err := s.DB.ExecContext(ctx, query,
		req.Name, req.Email, req.Phone, req.Company, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveClient удаляет клиента в пределах владельца. Пока на клиента
// ссылаются задачи, удаление возвращает ErrClientHasTasks.
func (s *Storage) RemoveClient(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveClient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM clients WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, fmt.Errorf("%s: %w", op, ErrClientHasTasks)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SearchClients ищет клиентов пользователя по подстроке в имени или компании.
func (s *Storage) SearchClients(ctx context.Context, userUID, substring string) ([]*models.Client, error) {
	const op = "storage.SearchClients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, email, phone, company, created_at
			  FROM clients
			  WHERE user_uid = $1
			    AND (name ILIKE '%' || $2 || '%' OR company ILIKE '%' || $2 || '%')
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, userUID, substring)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.UserUID, &c.Name, &c.Email, &c.Phone,
			&c.Company, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountClients возвращает количество клиентов пользователя.
func (s *Storage) CountClients(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountClients"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM clients WHERE user_uid = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
