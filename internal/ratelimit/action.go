// Package ratelimit реализует троттлинг действий пользователей:
// независимый бакет на пару (действие, пользователь) с квотой на час
// и ограниченный журнал отказов для последующей выгрузки.
package ratelimit

import "strings"

// Action тип троттлируемого действия. У каждого действия своя часовая квота.
type Action string

// MessageKey возвращает ключ каталога сообщений для отказа по квоте.
// Клиенты локализуют текст сами, тело ответа несёт только ключ.
func (a Action) MessageKey() string {
	return "error.rate.limit." + strings.ReplaceAll(string(a), "-", ".")
}

// Троттлируемые действия.
const (
	ActionTaskCreate      Action = "task-create"
	ActionClientCreate    Action = "client-create"
	ActionInvoiceDownload Action = "invoice-download"
	ActionInvoiceSend     Action = "invoice-send"
	ActionTaskSearch      Action = "task-search"
	ActionClientSearch    Action = "client-search"
	ActionReport          Action = "report"
	ActionEmailChange     Action = "email-change"
	ActionDashboard       Action = "dashboard"
)

// capacities квоты действий: максимум попыток на один часовой интервал.
var capacities = map[Action]int{
	ActionTaskCreate:      20,
	ActionClientCreate:    20,
	ActionInvoiceDownload: 5,
	ActionInvoiceSend:     5,
	ActionTaskSearch:      50,
	ActionClientSearch:    50,
	ActionReport:          32,
	ActionEmailChange:     3,
	ActionDashboard:       50,
}

// Capacity возвращает часовую квоту действия. Неизвестное действие
// получает консервативную квоту в одну попытку.
func Capacity(action Action) int {
	if c, ok := capacities[action]; ok {
		return c
	}
	return 1
}
