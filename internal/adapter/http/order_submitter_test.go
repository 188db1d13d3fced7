package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

func samplePreOrder(t *testing.T) *domain.PreOrder {
	t.Helper()
	items := []domain.CartItem{
		{MenuItem: domain.MenuItem{ID: "p1", Name: "Margherita", PriceValue: decimal.RequireFromString("12.50")}, Quantity: 2},
	}
	order, err := domain.NewPreOrder(items, domain.CheckoutDetails{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "555-0100",
		PickupTime:    time.Date(2026, 10, 18, 19, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("NewPreOrder: %v", err)
	}
	return order
}

func TestOrderSubmitter_SendsMultipartForm(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		form = make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
		w.Write([]byte(`{"result":"ignored"}`))
	}))
	defer srv.Close()

	sub := NewOrderSubmitter(srv.URL, srv.Client(), logger.Discard())
	receipt, err := sub.Submit(context.Background(), samplePreOrder(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", receipt.StatusCode)
	}

	want := map[string]string{
		"customerName":  "Ada Lovelace",
		"customerEmail": "ada@example.com",
		"customerPhone": "555-0100",
		"pickupTime":    "2026-10-18T19:00",
		"subtotal":      "25.00",
		"serviceFee":    "5.00",
		"total":         "30.00",
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("field %s = %q, want %q", k, form[k], v)
		}
	}

	var lines []struct {
		Name       string  `json:"name"`
		Quantity   int     `json:"quantity"`
		PriceValue float64 `json:"priceValue"`
	}
	if err := json.Unmarshal([]byte(form["orderDetails"]), &lines); err != nil {
		t.Fatalf("orderDetails is not JSON: %v", err)
	}
	if len(lines) != 1 || lines[0].Name != "Margherita" || lines[0].Quantity != 2 || lines[0].PriceValue != 12.5 {
		t.Errorf("unexpected orderDetails: %+v", lines)
	}
}

func TestOrderSubmitter_ErrorStatusStillDispatched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "script error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	sub := NewOrderSubmitter(srv.URL, srv.Client(), logger.Discard())
	receipt, err := sub.Submit(context.Background(), samplePreOrder(t))
	if err != nil {
		t.Fatalf("expected no error for a completed request, got %v", err)
	}
	if receipt.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected recorded status 500, got %d", receipt.StatusCode)
	}
}

func TestOrderSubmitter_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sub := NewOrderSubmitter(url, http.DefaultClient, logger.Discard())
	if _, err := sub.Submit(context.Background(), samplePreOrder(t)); err == nil {
		t.Fatal("expected transport error")
	}
}
