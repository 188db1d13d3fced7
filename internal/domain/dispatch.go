package domain

import (
	"errors"
	"time"
)

var ErrDispatchNotFound = errors.New("dispatch not found")

// Dispatch records one submission attempt for operators
type Dispatch struct {
	ID            int
	Reference     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PickupTime    time.Time
	Lines         []OrderLine
	Totals        OrderTotals
	Outcome       DispatchOutcome
	HTTPStatus    *int
	Error         *string
	CreatedAt     time.Time
}

// NewDispatch builds the journal entry for order. A nil dispatchErr means
// the request left without a transport error.
func NewDispatch(order *PreOrder, receipt Receipt, dispatchErr error) *Dispatch {
	d := &Dispatch{
		Reference:     order.Reference,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		PickupTime:    order.PickupTime,
		Lines:         order.Lines,
		Totals:        order.Totals,
		Outcome:       OutcomeDispatched,
		CreatedAt:     time.Now(),
	}

	if dispatchErr != nil {
		msg := dispatchErr.Error()
		d.Outcome = OutcomeFailed
		d.Error = &msg
		return d
	}

	if receipt.StatusCode != 0 {
		status := receipt.StatusCode
		d.HTTPStatus = &status
	}
	return d
}

// Confirmed is always false: the endpoint gives no readable acceptance signal.
func (d *Dispatch) Confirmed() bool {
	return false
}
