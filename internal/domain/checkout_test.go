package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCheckoutDetails_Validate(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 30, 45, 0, time.Local)
	minPickup := MinPickupTime(now)

	valid := CheckoutDetails{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "+39 055 123456",
		PickupTime:    now.Add(time.Hour),
	}

	tests := []struct {
		name   string
		mutate func(d *CheckoutDetails)
		fields []string
	}{
		{"valid", func(d *CheckoutDetails) {}, nil},
		{"pickup in the current minute", func(d *CheckoutDetails) { d.PickupTime = minPickup }, nil},
		{"missing name", func(d *CheckoutDetails) { d.CustomerName = "" }, []string{"customerName"}},
		{"missing email", func(d *CheckoutDetails) { d.CustomerEmail = "" }, []string{"customerEmail"}},
		{"invalid email", func(d *CheckoutDetails) { d.CustomerEmail = "not-an-email" }, []string{"customerEmail"}},
		{"missing phone", func(d *CheckoutDetails) { d.CustomerPhone = "" }, []string{"customerPhone"}},
		{"missing pickup", func(d *CheckoutDetails) { d.PickupTime = time.Time{} }, []string{"pickupTime"}},
		{"pickup in the past", func(d *CheckoutDetails) { d.PickupTime = now.Add(-2 * time.Minute) }, []string{"pickupTime"}},
		{"everything missing", func(d *CheckoutDetails) { *d = CheckoutDetails{} },
			[]string{"customerName", "customerEmail", "customerPhone", "pickupTime"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)

			err := d.Validate(minPickup)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(verrs) != len(tt.fields) {
				t.Fatalf("got %d errors (%v), want fields %v", len(verrs), verrs, tt.fields)
			}
			for i, f := range tt.fields {
				if verrs[i].Field != f {
					t.Errorf("error %d field = %s, want %s", i, verrs[i].Field, f)
				}
			}
		})
	}
}

func TestCheckoutDetails_Normalize(t *testing.T) {
	d := CheckoutDetails{CustomerName: "  Ada ", CustomerEmail: " ada@example.com", CustomerPhone: "123 "}.Normalize()
	if d.CustomerName != "Ada" || d.CustomerEmail != "ada@example.com" || d.CustomerPhone != "123" {
		t.Errorf("unexpected normalized details: %+v", d)
	}
	if err := (CheckoutDetails{CustomerName: "   "}).Normalize().Validate(time.Now()); err == nil {
		t.Errorf("blank name must fail validation")
	}
}

func TestParsePickupTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	got, err := ParsePickupTime("2026-10-18T19:30", loc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2026, 10, 18, 19, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got, err := ParsePickupTime("", loc); err != nil || !got.IsZero() {
		t.Errorf("empty value should yield zero time, got %v %v", got, err)
	}

	if _, err := ParsePickupTime("tomorrow", loc); err == nil {
		t.Errorf("expected error for garbage input")
	}
}
