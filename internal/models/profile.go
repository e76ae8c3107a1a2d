// Package models содержит модель профиля пользователя: контактные данные,
// реквизиты для счётов, язык и валюта, а также состояние подтверждения почты.
// Профиль создаётся лениво при первом обращении.
package models

import "time"

// Profile представляет профиль пользователя с контактными и отображаемыми данными.
type Profile struct {
	ID                int        // Идентификатор записи профиля
	UserUID           string     // Уникальный идентификатор владельца
	CompanyName       string     // Название компании для шапки счёта
	LogoURL           string     // Ссылка на логотип
	Email             string     // Контактная почта (может отличаться от учётной)
	Phone             string     // Телефон
	Language          string     // Предпочитаемый язык (en, ru, es)
	Currency          string     // Код валюты для отображения сумм (USD, EUR, ...)
	EmailVerified     bool       // Флаг подтверждённой почты
	VerificationToken *string    // Токен подтверждения почты (nil после подтверждения)
	ResetToken        *string    // Токен сброса пароля
	AuditNote         string     // Свободный журнал правок администратора
	UpdatedAt         time.Time  // Дата последнего изменения
	LastLoginAt       *time.Time // Зеркалится из users для админского обзора
}

// DummyProfileUpdate используется для приёма данных обновления профиля из JSON-запроса.
type DummyProfileUpdate struct {
	CompanyName string `json:"company_name" validate:"omitempty,max=120"`                           // Название компании
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`                                   // Ссылка на логотип
	Phone       string `json:"phone" validate:"omitempty,max=32"`                                   // Телефон
	Language    string `json:"language" validate:"omitempty,oneof=en ru es"`                        // Язык интерфейса и писем
	Currency    string `json:"currency" validate:"omitempty,oneof=USD EUR GBP JPY CNY AUD CAD CHF"` // Валюта
}

// DummyEmailChange используется для приёма запроса на смену почты.
// Смена почты сбрасывает флаг подтверждения и порождает новый токен.
type DummyEmailChange struct {
	Email string `json:"email" validate:"required,email"` // Новая почта
}

// DummyPasswordForgot используется для приёма запроса на сброс пароля.
type DummyPasswordForgot struct {
	Email string `json:"email" validate:"required,email"` // Почта учётной записи
}

// DummyPasswordReset используется для приёма нового пароля по токену из письма.
type DummyPasswordReset struct {
	Token    string `json:"token" validate:"required"`          // Токен сброса
	Password string `json:"password" validate:"required,min=8"` // Новый пароль
}
