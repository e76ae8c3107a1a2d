package models

// DummyInvoiceDownload используется для приёма запроса на формирование счёта:
// перечень задач, которые должны попасть в строки счёта.
type DummyInvoiceDownload struct {
	TaskIDs []int `json:"task_ids" validate:"required,min=1,dive,gt=0"` // Выбранные задачи
}

// DummyInvoiceSend используется для приёма запроса на отправку счёта клиенту.
type DummyInvoiceSend struct {
	ClientID int   `json:"client_id" validate:"required,gt=0"`           // Получатель счёта
	TaskIDs  []int `json:"task_ids" validate:"required,min=1,dive,gt=0"` // Выбранные задачи
}
