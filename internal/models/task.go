// Package models содержит модель задачи — единицу оплачиваемой или
// неоплачиваемой работы. Денежные величины Total и RemainingDue нигде
// не хранятся: они всегда вычисляются из полей самой задачи.
package models

import "time"

// Статусы задачи на доске.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Типы тарификации задачи.
const (
	BillingHourly = "HOURLY" // Оплата по часам: hours_worked * hourly_rate
	BillingFixed  = "FIXED"  // Фиксированная сумма: fixed_amount
)

// Task представляет задачу пользователя, опционально привязанную к клиенту.
type Task struct {
	ID             int        // Идентификатор задачи
	UserUID        string     // Уникальный идентификатор владельца
	ClientID       *int       // Идентификатор клиента (nil, если задача без клиента)
	ClientName     string     // Имя клиента на момент создания, для строк счёта
	Title          string     // Заголовок
	Description    string     // Описание
	Deadline       *time.Time // Срок (nil — без срока)
	Billable       bool       // Участвует ли задача в счетах
	HoursWorked    float64    // Отработанные часы
	HourlyRate     float64    // Почасовая ставка
	FixedAmount    float64    // Фиксированная сумма (при BillingFixed)
	BillingType    string     // BillingHourly или BillingFixed
	AdvancePayment float64    // Полученный аванс
	Status         string     // StatusTodo, StatusInProgress или StatusCompleted
	OrderIndex     int        // Позиция в колонке статуса
	Hidden         bool       // Скрыта ли задача с доски
	Color          string     // Цветовая метка
	CreatedAt      time.Time  // Дата создания
	UpdatedAt      time.Time  // Дата последнего изменения
}

// Total возвращает полную стоимость задачи.
// Неоплачиваемая задача всегда стоит 0; фиксированная — fixed_amount,
// почасовая — hours_worked * hourly_rate.
func (t *Task) Total() float64 {
	if !t.Billable {
		return 0
	}
	if t.BillingType == BillingFixed {
		return t.FixedAmount
	}
	return t.HoursWorked * t.HourlyRate
}

// RemainingDue возвращает остаток к оплате: Total за вычетом аванса.
func (t *Task) RemainingDue() float64 {
	if !t.Billable {
		return 0
	}
	return t.Total() - t.AdvancePayment
}

// DummyTask используется для приёма данных задачи из JSON-запроса
// до их валидации и преобразования в Task. Срок приходит строкой.
type DummyTask struct {
	Title          string  `json:"title" validate:"required,max=200"`                            // Заголовок
	Description    string  `json:"description" validate:"omitempty"`                             // Описание
	ClientID       *int    `json:"client_id" validate:"omitempty,gt=0"`                          // Клиент (опционально)
	Deadline       string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`            // Срок в формате 2006-01-02
	Billable       bool    `json:"billable"`                                                     // Оплачиваемая ли задача
	HoursWorked    float64 `json:"hours_worked" validate:"gte=0"`                                // Часы
	HourlyRate     float64 `json:"hourly_rate" validate:"gte=0"`                                 // Ставка
	FixedAmount    float64 `json:"fixed_amount" validate:"gte=0"`                                // Фиксированная сумма
	BillingType    string  `json:"billing_type" validate:"omitempty,oneof=HOURLY FIXED"`         // Тип тарификации
	AdvancePayment float64 `json:"advance_payment" validate:"gte=0"`                             // Аванс
	Status         string  `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"` // Статус
	Color          string  `json:"color" validate:"omitempty,max=20"`                            // Цветовая метка
}

// DummyReorder используется для приёма нового порядка задач:
// упорядоченный список идентификаторов в пределах одной колонки статуса.
type DummyReorder struct {
	TaskIDs []int `json:"task_ids" validate:"required,min=1,dive,gt=0"` // Идентификаторы в новом порядке
}

// TaskReport агрегированная сводка по задачам пользователя для отчёта.
type TaskReport struct {
	TotalTasks      int     `json:"total_tasks"`       // Всего задач
	TodoCount       int     `json:"todo_count"`        // В статусе TODO
	InProgressCount int     `json:"in_progress_count"` // В статусе IN_PROGRESS
	CompletedCount  int     `json:"completed_count"`   // В статусе COMPLETED
	BillableTotal   float64 `json:"billable_total"`    // Сумма Total по оплачиваемым задачам
	AdvanceTotal    float64 `json:"advance_total"`     // Сумма полученных авансов
	RemainingDue    float64 `json:"remaining_due"`     // Остаток к оплате
}
