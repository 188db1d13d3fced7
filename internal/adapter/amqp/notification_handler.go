package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
)

// NotificationHandler prints pre-order events for the staff who confirm
// them by phone or email.
type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    os.Stdout,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.CheckoutEventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received checkout event for pre-order %s", msg.Reference),
		msg.Reference, map[string]interface{}{
			"reference": msg.Reference,
			"outcome":   msg.Outcome,
		})

	switch msg.Outcome {
	case domain.OutcomeDispatched:
		fmt.Fprintf(h.out, "Pre-order %s from %s: %d item(s), total %s, pickup %s. Awaiting manual confirmation.\n",
			msg.Reference, msg.CustomerName, msg.ItemCount, msg.Total, msg.PickupTime)
	default:
		fmt.Fprintf(h.out, "Pre-order %s from %s could not be dispatched; the customer was asked to retry or call.\n",
			msg.Reference, msg.CustomerName)
	}

	return nil
}
