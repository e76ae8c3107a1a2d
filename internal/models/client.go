package models

import "time"

// Client представляет заказчика пользователя. Запись принадлежит ровно
// одному пользователю; чужие идентификаторы не разрешаются в запись.
type Client struct {
	ID        int       // Идентификатор клиента
	UserUID   string    // Уникальный идентификатор владельца
	Name      string    // Название или имя заказчика
	Email     string    // Контактная почта
	Phone     string    // Телефон
	Company   string    // Компания
	CreatedAt time.Time // Дата создания
}

// DummyClient используется для приёма данных клиента из JSON-запроса.
type DummyClient struct {
	Name    string `json:"name" validate:"required,max=120"`     // Название заказчика
	Email   string `json:"email" validate:"omitempty,email"`     // Контактная почта
	Phone   string `json:"phone" validate:"omitempty,max=32"`    // Телефон
	Company string `json:"company" validate:"omitempty,max=120"` // Компания
}
