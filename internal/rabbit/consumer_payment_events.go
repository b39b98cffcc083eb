package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Chen-Zehua-TP/sgvmart/internal/model"
	"github.com/Chen-Zehua-TP/sgvmart/internal/repository"
	"github.com/Chen-Zehua-TP/sgvmart/internal/service"
)

// PaymentEventConsumer applies payment-gateway notifications. The gateway's
// webhook relay publishes one message per paymentStatus transition; order
// status is untouched, the two move independently.
type PaymentEventConsumer struct {
	Service *service.OrderService
}

func NewPaymentEventConsumer(s *service.OrderService) *PaymentEventConsumer {
	return &PaymentEventConsumer{Service: s}
}

type PaymentEventMessage struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

func (c *PaymentEventConsumer) Handle(msg []byte) error {
	var event PaymentEventMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Println("payment event: malformed message:", err)
		return err
	}

	err := c.Service.SetPaymentStatus(
		context.Background(),
		event.OrderID,
		model.PaymentStatus(event.PaymentStatus),
	)
	if errors.Is(err, repository.ErrOrderNotFound) {
		// The gateway can outrun us or replay old events; drop and move on.
		log.Printf("payment event for unknown order %s dropped", event.OrderID)
		return nil
	}
	if err != nil {
		log.Printf("payment event for order %s failed: %v", event.OrderID, err)
		return err
	}

	log.Printf("payment status for order %s set to %s", event.OrderID, event.PaymentStatus)
	return nil
}
