package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one serialized cart entry in a pre-order
type OrderLine struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	PriceValue decimal.Decimal `json:"priceValue"`
}

// PreOrder is the payload handed to the order endpoint. Staff confirm it
// manually; nothing in the system confirms it automatically.
type PreOrder struct {
	Reference     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PickupTime    time.Time
	Lines         []OrderLine
	Totals        OrderTotals
	CreatedAt     time.Time
}

// NewPreOrder snapshots the cart and the checkout details.
func NewPreOrder(items []CartItem, details CheckoutDetails) (*PreOrder, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]OrderLine, len(items))
	for i, item := range items {
		lines[i] = OrderLine{
			Name:       item.Name,
			Quantity:   item.Quantity,
			PriceValue: item.PriceValue,
		}
	}

	return &PreOrder{
		Reference:     uuid.NewString(),
		CustomerName:  details.CustomerName,
		CustomerEmail: details.CustomerEmail,
		CustomerPhone: details.CustomerPhone,
		PickupTime:    details.PickupTime,
		Lines:         lines,
		Totals:        ComputeTotals(items),
		CreatedAt:     time.Now(),
	}, nil
}

// ItemCount sums quantities over all lines
func (o *PreOrder) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
