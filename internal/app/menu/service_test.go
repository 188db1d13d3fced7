package menu

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
)

type fakeSource struct {
	calls      atomic.Int32
	categories []domain.MenuCategory
	err        error
	release    chan struct{}
	started    chan struct{}
}

func (f *fakeSource) FetchMenu(ctx context.Context) ([]domain.MenuCategory, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.categories, f.err
}

func sampleCatalog() []domain.MenuCategory {
	return []domain.MenuCategory{
		{Title: "Pizza", Items: []domain.MenuItem{
			{ID: "p1", Name: "Margherita", Status: domain.Available},
			{ID: "p2", Name: "Diavola", Status: domain.SoldOut},
		}},
		{Title: "Desserts", Items: []domain.MenuItem{
			{ID: "d1", Name: "Tiramisu", Status: domain.SoldOut},
		}},
	}
}

func TestService_LoadFiltersCatalog(t *testing.T) {
	src := &fakeSource{categories: sampleCatalog()}
	svc := NewService(src, logger.Discard())

	got, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Pizza" || len(got[0].Items) != 1 {
		t.Fatalf("unexpected catalog: %+v", got)
	}

	state := svc.State()
	if state.Loading || state.Err != "" || len(state.Categories) != 1 {
		t.Errorf("unexpected state: %+v", state)
	}
	if _, ok := svc.Item("p2"); ok {
		t.Errorf("sold out item must not be addressable")
	}
	if _, ok := svc.Item("p1"); !ok {
		t.Errorf("p1 should be in the catalog")
	}
}

func TestService_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"remote error message", &domain.MenuLoadError{Message: "Menu sheet is being updated"}, "Menu sheet is being updated"},
		{"plain transport error", errors.New("connection reset"), domain.MenuFetchFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeSource{err: tt.err}, logger.Discard())

			_, err := svc.Load(context.Background())
			var loadErr *domain.MenuLoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected MenuLoadError, got %v", err)
			}
			if loadErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", loadErr.Message, tt.wantMsg)
			}

			state := svc.State()
			if state.Loading {
				t.Errorf("loading must be cleared after failure")
			}
			if state.Err != tt.wantMsg {
				t.Errorf("state error = %q", state.Err)
			}
		})
	}
}

func TestService_LoadingUntilFirstLoadEnds(t *testing.T) {
	src := &fakeSource{
		err:     errors.New("offline"),
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	svc := NewService(src, logger.Discard())

	state := svc.State()
	if !state.Loading || state.Err != "" || len(state.Categories) != 0 {
		t.Fatalf("new loader should report loading, got %+v", state)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Load(context.Background())
	}()
	<-src.started
	if !svc.State().Loading {
		t.Error("state should stay loading while the first load is in flight")
	}
	close(src.release)
	<-done

	state = svc.State()
	if state.Loading || state.Err == "" {
		t.Errorf("expected terminal error state, got %+v", state)
	}
}

func TestService_ReloadClearsStaleError(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	svc := NewService(src, logger.Discard())

	if _, err := svc.Load(context.Background()); err == nil {
		t.Fatal("expected first load to fail")
	}

	src.err = nil
	src.categories = sampleCatalog()
	src.release = make(chan struct{})
	src.started = make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Load(context.Background())
	}()
	<-src.started

	state := svc.State()
	if !state.Loading || state.Err != "" {
		t.Errorf("retry in flight should show loading without the old error, got %+v", state)
	}
	close(src.release)
	<-done
}

func TestService_ReloadAfterErrorRecovers(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	svc := NewService(src, logger.Discard())

	if _, err := svc.Load(context.Background()); err == nil {
		t.Fatal("expected first load to fail")
	}

	src.err = nil
	src.categories = sampleCatalog()
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	state := svc.State()
	if state.Err != "" || len(state.Categories) != 1 {
		t.Errorf("reload should clear the error: %+v", state)
	}
	if src.calls.Load() != 2 {
		t.Errorf("each load must hit the source, calls = %d", src.calls.Load())
	}
}

func TestService_OverlappingLoadsShareOneRoundTrip(t *testing.T) {
	src := &fakeSource{
		categories: sampleCatalog(),
		release:    make(chan struct{}),
		started:    make(chan struct{}, 1),
	}
	svc := NewService(src, logger.Discard())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Load(context.Background())
	}()
	<-src.started

	if !svc.State().Loading {
		t.Errorf("state should report loading while in flight")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Load(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if src.calls.Load() != 1 {
		t.Errorf("overlapping loads made %d round trips", src.calls.Load())
	}
}

func TestService_CloseDropsLateCompletion(t *testing.T) {
	src := &fakeSource{
		categories: sampleCatalog(),
		release:    make(chan struct{}),
		started:    make(chan struct{}, 1),
	}
	svc := NewService(src, logger.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Load(context.Background())
		done <- err
	}()
	<-src.started

	svc.Close()
	close(src.release)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if state := svc.State(); len(state.Categories) != 0 {
		t.Errorf("closed loader state must not be updated: %+v", state)
	}

	if _, err := svc.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("load after close should fail with ErrClosed, got %v", err)
	}
}
