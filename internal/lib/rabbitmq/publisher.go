package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publisher публикует доменные сообщения по ключу маршрутизации.
// Сервисы зависят от интерфейса, а не от канала AMQP напрямую.
type Publisher interface {
	Publish(exchange, routingkey string, message any) error
}

// ChannelPublisher реализует Publisher поверх канала AMQP.
type ChannelPublisher struct {
	Ch *amqp.Channel
}

// Publish сериализует message в JSON и публикует его в обменник.
func (p *ChannelPublisher) Publish(exchange, routingkey string, message any) error {
	return PublishMessage(p.Ch, exchange, routingkey, message)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
