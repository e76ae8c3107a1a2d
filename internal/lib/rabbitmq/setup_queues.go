package rabbitmq

// QueueConfig описывает очередь уведомлений и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Имена очередей и ключей маршрутизации обменника notifications.
const (
	QueueViolationLog  = "notification.violationlog"
	QueueVerification  = "notification.verification"
	QueuePasswordReset = "notification.password-reset"
	QueuePremiumExpiry = "notification.premium-expiry"
	QueueInvoice       = "notification.invoice"

	KeyViolationLog  = "violationlog"
	KeyVerification  = "verification"
	KeyPasswordReset = "password-reset"
	KeyPremiumExpiry = "premium-expiry"
	KeyInvoice       = "invoice"
)

// GetNotificationQueues возвращает очереди, которые потребляет notification-sender.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueViolationLog, RoutingKey: KeyViolationLog},
		{QueueName: QueueVerification, RoutingKey: KeyVerification},
		{QueueName: QueuePasswordReset, RoutingKey: KeyPasswordReset},
		{QueueName: QueuePremiumExpiry, RoutingKey: KeyPremiumExpiry},
		{QueueName: QueueInvoice, RoutingKey: KeyInvoice},
	}
}
