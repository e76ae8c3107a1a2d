package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/mrtasks/internal/models"
)

const taskColumns = `id, user_uid, client_id, client_name, title, description, deadline,
			      billable, hours_worked, hourly_rate, fixed_amount, billing_type,
			      advance_payment, status, order_index, hidden, color, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }) (*models.Task, error) {
	t := &models.Task{}
	var clientID sql.NullInt64
	var deadline sql.NullTime
	if err := row.Scan(&t.ID, &t.UserUID, &clientID, &t.ClientName, &t.Title,
		&t.Description, &deadline, &t.Billable, &t.HoursWorked, &t.HourlyRate,
		&t.FixedAmount, &t.BillingType, &t.AdvancePayment, &t.Status,
		&t.OrderIndex, &t.Hidden, &t.Color, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if clientID.Valid {
		id := int(clientID.Int64)
		t.ClientID = &id
	}
	if deadline.Valid {
		t.Deadline = &deadline.Time
	}
	return t, nil
}

// CreateTask вставляет новую задачу и возвращает её ID. Позиция в колонке
// статуса назначается следом за последней задачей пользователя в этом статусе.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) (int, error) {
	const op = "storage.CreateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tasks (user_uid, client_id, client_name, title, description,
			      deadline, billable, hours_worked, hourly_rate, fixed_amount,
			      billing_type, advance_payment, status, order_index, hidden, color)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			      (SELECT COALESCE(MAX(order_index) + 1, 0) FROM tasks
			       WHERE user_uid = $1 AND status = $13),
			      $14, $15)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		task.UserUID, task.ClientID, task.ClientName, task.Title, task.Description,
		task.Deadline, task.Billable, task.HoursWorked, task.HourlyRate,
		task.FixedAmount, task.BillingType, task.AdvancePayment, task.Status,
		task.Hidden, task.Color).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetTask возвращает задачу по ID в пределах владельца.
// Чужой или несуществующий ID возвращает ErrNotFound.
func (s *Storage) GetTask(ctx context.Context, id int, userUID string) (*models.Task, error) {
	const op = "storage.GetTask"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE id = $1 AND user_uid = $2`
	t, err := scanTask(s.DB.QueryRowContext(ctx, query, id, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTasks возвращает задачи пользователя, упорядоченные по статусу
// и позиции внутри колонки. Скрытые задачи включаются только по запросу.
func (s *Storage) ListTasks(ctx context.Context, userUID string, includeHidden bool) ([]*models.Task, error) {
	const op = "storage.ListTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND (hidden = FALSE OR $2)
			  ORDER BY status, order_index, id`
	rows, err := s.DB.QueryContext(ctx, query, userUID, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTasksByIDs возвращает задачи пользователя из перечня идентификаторов.
// Чужие и несуществующие идентификаторы молча пропускаются.
func (s *Storage) ListTasksByIDs(ctx context.Context, userUID string, ids []int) ([]*models.Task, error) {
	const op = "storage.ListTasksByIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, userUID)
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1 AND id IN (` + strings.Join(placeholders, ", ") + `)
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTask обновляет данные задачи в пределах владельца
// и возвращает количество изменённых строк.
func (s *Storage) UpdateTask(ctx context.Context, task models.Task, id int, userUID string) (int, error) {
	const op = "storage.UpdateTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tasks
			  SET client_id = $1, client_name = $2, title = $3, description = $4,
			      deadline = $5, billable = $6, hours_worked = $7, hourly_rate = $8,
			      fixed_amount = $9, billing_type = $10, advance_payment = $11,
			      status = $12, color = $13, updated_at = NOW()
			  WHERE id = $14 AND user_uid = $15`
	result, err := s.DB.ExecContext(ctx, query,
		task.ClientID, task.ClientName, task.Title, task.Description,
		task.Deadline, task.Billable, task.HoursWorked, task.HourlyRate,
		task.FixedAmount, task.BillingType, task.AdvancePayment,
		task.Status, task.Color, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveTask удаляет задачу в пределах владельца и возвращает количество удалённых строк.
func (s *Storage) RemoveTask(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveTask"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tasks WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetTaskHidden скрывает или возвращает задачу на доску
// и возвращает количество изменённых строк.
func (s *Storage) SetTaskHidden(ctx context.Context, id int, userUID string, hidden bool) (int, error) {
	const op = "storage.SetTaskHidden"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tasks
			  SET hidden = $1, updated_at = NOW()
			  WHERE id = $2 AND user_uid = $3`
	result, err := s.DB.ExecContext(ctx, query, hidden, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ReorderTasks присваивает перечисленным задачам пользователя позиции
// 0..N-1 в порядке перечисления. Не упомянутые задачи не меняются.
// Все обновления выполняются в одной транзакции.
func (s *Storage) ReorderTasks(ctx context.Context, userUID string, ids []int) error {
	const op = "storage.ReorderTasks"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE tasks
			  SET order_index = $1, updated_at = NOW()
			  WHERE id = $2 AND user_uid = $3`
	for position, id := range ids {
		if _, err := tx.ExecContext(ctx, query, position, id, userUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SearchTasks ищет задачи пользователя по подстроке в заголовке или имени клиента.
func (s *Storage) SearchTasks(ctx context.Context, userUID, substring string) ([]*models.Task, error) {
	const op = "storage.SearchTasks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_uid = $1
			    AND (title ILIKE '%' || $2 || '%' OR client_name ILIKE '%' || $2 || '%')
			  ORDER BY status, order_index, id`
	rows, err := s.DB.QueryContext(ctx, query, userUID, substring)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTasks возвращает количество задач пользователя.
func (s *Storage) CountTasks(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountTasks"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM tasks WHERE user_uid = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
