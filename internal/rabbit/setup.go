package rabbit

import (
	"log"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

// SetupConsumers wires the payment-events queue to the order service. The
// payment gateway's webhook relay publishes to a fanout exchange; we keep our
// own durable queue on it.
func SetupConsumers(ch *amqp091.Channel, svc *service.OrderService) {
	consumer := NewPaymentEventConsumer(svc)

	q, err := ch.QueueDeclare(
		"sgvmart_payment_events",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("failed to declare queue:", err)
		return
	}

	err = ch.QueueBind(
		q.Name,
		"", // fanout ignores the routing key
		"payment_events",
		false,
		nil,
	)
	if err != nil {
		log.Println("failed to bind exchange:", err)
		return
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("failed to consume queue:", err)
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Println("subscribed to payment_events exchange")
}
