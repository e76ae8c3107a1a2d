// Package smtp предоставляет транспорт исходящих писем поверх SMTP.
package smtp

import "io"

// Client покрывает используемое подмножество smtp.Client,
// чтобы отправку можно было тестировать без сети.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface интерфейс для SMTP транспорта.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
