package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/YelzhanWeb/storefront/internal/interfaces"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PreordersExchange fans checkout events out to every staff subscriber.
const PreordersExchange = "preorders_fanout"

type publisher struct {
	conn           Connection
	confirmTimeout time.Duration
}

func NewPublisher(conn Connection, confirmTimeout time.Duration) interfaces.EventPublisher {
	return &publisher{conn: conn, confirmTimeout: confirmTimeout}
}

// PublishCheckoutEvent returns only after the broker has taken the event.
func (p *publisher) PublishCheckoutEvent(ctx context.Context, msg interfaces.CheckoutEventMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.DeclareFanout(PreordersExchange); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := ch.Confirm(); err != nil {
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()

	err = ch.PublishConfirmed(ctx, PreordersExchange, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    msg.Reference,
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *publisher) channel() (Channel, error) {
	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return nil, err
		}
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}
