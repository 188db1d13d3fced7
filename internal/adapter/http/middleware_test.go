package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
)

func TestLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := LoggingMiddleware(logger.NewWithWriter("test", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	req.Header.Set(requestIDHeader, "req-fixed")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-fixed" {
		t.Errorf("expected request id echoed, got %q", got)
	}
	if !strings.Contains(buf.String(), `"status":418`) {
		t.Errorf("expected response status in log, got %s", buf.String())
	}
}

func TestLoggingMiddleware_GeneratedIDReachesHandler(t *testing.T) {
	var seen string
	h := LoggingMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFrom(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	got := rec.Header().Get(requestIDHeader)
	if got == "" {
		t.Fatal("expected a generated request id on the response")
	}
	if seen != got {
		t.Errorf("handler saw request id %q, response carries %q", seen, got)
	}
}

func TestMiddlewareChain_PanicLoggedWithResponseID(t *testing.T) {
	var buf bytes.Buffer
	lgr := logger.NewWithWriter("test", &buf)
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := LoggingMiddleware(lgr)(RecoveryMiddleware(lgr)(panicking))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	id := rec.Header().Get(requestIDHeader)
	if id == "" {
		t.Fatal("expected request id on the 500 response")
	}

	var panicLine string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, "panic_recovered") {
			panicLine = line
		}
	}
	if panicLine == "" {
		t.Fatalf("expected panic log line, got %s", buf.String())
	}
	if !strings.Contains(panicLine, id) {
		t.Errorf("panic log %s does not carry response request id %q", panicLine, id)
	}
	if !strings.Contains(buf.String(), `"status":500`) {
		t.Errorf("expected completed request logged with 500, got %s", buf.String())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
