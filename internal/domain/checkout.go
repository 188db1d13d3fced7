package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// PickupLayout is the datetime-local wire format used for pickup times.
const PickupLayout = "2006-01-02T15:04"

var (
	ErrInvalidPhaseTransition = errors.New("invalid checkout phase transition")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrSubmissionInFlight     = errors.New("a submission is already in flight")
	ErrWorkflowClosed         = errors.New("checkout workflow is closed")
	ErrDispatchFailed         = errors.New("order dispatch failed")
)

// CheckoutDetails is collected fresh each time checkout is entered
type CheckoutDetails struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PickupTime    time.Time
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// MinPickupTime anchors the earliest pickup to the wall clock, at minute
// resolution, in the clock's own location.
func MinPickupTime(now time.Time) time.Time {
	return now.Truncate(time.Minute)
}

// ParsePickupTime accepts the datetime-local layout in loc, or RFC 3339.
func ParsePickupTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(PickupLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("pickup time must use %s: %w", PickupLayout, err)
	}
	return t.In(loc), nil
}

// Normalize trims surrounding whitespace from the text fields.
func (d CheckoutDetails) Normalize() CheckoutDetails {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.CustomerEmail = strings.TrimSpace(d.CustomerEmail)
	d.CustomerPhone = strings.TrimSpace(d.CustomerPhone)
	return d
}

// Validate checks the four required fields against minPickup.
func (d CheckoutDetails) Validate(minPickup time.Time) error {
	var errs ValidationErrors

	if d.CustomerName == "" {
		errs = append(errs, ValidationError{Field: "customerName", Message: "full name is required"})
	}

	if d.CustomerEmail == "" {
		errs = append(errs, ValidationError{Field: "customerEmail", Message: "email address is required"})
	} else if _, err := mail.ParseAddress(d.CustomerEmail); err != nil {
		errs = append(errs, ValidationError{Field: "customerEmail", Message: "email address is invalid"})
	}

	if d.CustomerPhone == "" {
		errs = append(errs, ValidationError{Field: "customerPhone", Message: "phone number is required"})
	}

	if d.PickupTime.IsZero() {
		errs = append(errs, ValidationError{Field: "pickupTime", Message: "pickup time is required"})
	} else if d.PickupTime.Before(minPickup) {
		errs = append(errs, ValidationError{
			Field:   "pickupTime",
			Message: fmt.Sprintf("pickup time must not be earlier than %s", minPickup.Format(PickupLayout)),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
