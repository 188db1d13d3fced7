package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/storefront/internal/domain"
)

// CheckoutEventMessage announces a pre-order dispatch attempt to staff
type CheckoutEventMessage struct {
	Reference    string                 `json:"reference"`
	CustomerName string                 `json:"customer_name"`
	PickupTime   string                 `json:"pickup_time"`
	ItemCount    int                    `json:"item_count"`
	Total        string                 `json:"total"`
	Outcome      domain.DispatchOutcome `json:"outcome"`
	Timestamp    time.Time              `json:"timestamp"`
}

type EventPublisher interface {
	PublishCheckoutEvent(ctx context.Context, msg CheckoutEventMessage) error
}

type MessageConsumer interface {
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, body []byte) error
