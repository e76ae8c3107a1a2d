// Package models содержит модель платной подписки пользователя.
// Статус "премиум" нигде не хранится как абсолютная истина: он всегда
// выводится из флага и даты истечения на момент проверки.
package models

import "time"

// Subscription представляет запись о премиум-подписке пользователя.
type Subscription struct {
	ID        int        // Идентификатор записи
	UserUID   string     // Уникальный идентификатор владельца
	IsPremium bool       // Флаг оплаченной подписки
	ExpiresAt *time.Time // Дата истечения (nil — бессрочная)
	UpdatedAt time.Time  // Дата последнего изменения
}

// Active сообщает, действует ли премиум-подписка в данный момент.
// Подписка активна, пока установлен флаг и дата истечения пуста либо в будущем.
func (s *Subscription) Active(now time.Time) bool {
	if s == nil || !s.IsPremium {
		return false
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// DummyPremiumUpgrade используется для приёма данных о продлении подписки.
type DummyPremiumUpgrade struct {
	Months int `json:"months" validate:"required,gt=0,lte=36"` // Количество месяцев продления
}
