package amqp

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
)

func TestNotificationHandler_HandleNotification(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "dispatched",
			body: `{"reference":"ref-1","customer_name":"Ada","pickup_time":"2026-10-18T19:00","item_count":2,"total":"30.00","outcome":"dispatched"}`,
			want: "Pre-order ref-1 from Ada: 2 item(s), total 30.00, pickup 2026-10-18T19:00. Awaiting manual confirmation.",
		},
		{
			name: "failed",
			body: `{"reference":"ref-2","customer_name":"Bob","outcome":"failed"}`,
			want: "Pre-order ref-2 from Bob could not be dispatched",
		},
		{
			name:    "malformed",
			body:    `{"reference":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := NewNotificationHandler(logger.Discard())
			h.out = &out

			err := h.HandleNotification(context.Background(), []byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected output to contain %q, got %q", tt.want, out.String())
			}
		})
	}
}
