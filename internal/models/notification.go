package models

import "time"

// ViolationLogExport полезная нагрузка сообщения с выгрузкой журнала
// отказов лимитера: дата выгрузки и готовое CSV-содержимое вложения.
type ViolationLogExport struct {
	Date time.Time `json:"date"` // Момент выгрузки
	CSV  []byte    `json:"csv"`  // CSV с колонками Timestamp, Username, IPAddress, Action
}

// VerificationEmail полезная нагрузка письма с подтверждением почты.
type VerificationEmail struct {
	Email    string `json:"email"`    // Адрес получателя
	Username string `json:"username"` // Имя пользователя
	Token    string `json:"token"`    // Токен подтверждения
	Language string `json:"language"` // Язык письма
}

// PasswordResetEmail полезная нагрузка письма с токеном сброса пароля.
type PasswordResetEmail struct {
	Email    string `json:"email"`    // Адрес получателя
	Username string `json:"username"` // Имя пользователя
	Token    string `json:"token"`    // Токен сброса
	Language string `json:"language"` // Язык письма
}

// PremiumExpiryNotice полезная нагрузка напоминания об окончании премиума.
type PremiumExpiryNotice struct {
	Email     string    `json:"email"`      // Адрес получателя
	Username  string    `json:"username"`   // Имя пользователя
	Language  string    `json:"language"`   // Язык письма
	ExpiresAt time.Time `json:"expires_at"` // Дата окончания подписки
}

// InvoiceEmail полезная нагрузка письма со сформированным счётом.
type InvoiceEmail struct {
	Email       string `json:"email"`        // Адрес получателя (клиент)
	CompanyName string `json:"company_name"` // Отправитель для темы письма
	ReplyTo     string `json:"reply_to"`     // Адрес для ответа (почта профиля)
	Language    string `json:"language"`     // Язык письма
	Filename    string `json:"filename"`     // Имя вложения
	PDF         []byte `json:"pdf"`          // Содержимое счёта
}
