package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
	"golang.org/x/sync/singleflight"
)

var ErrClosed = errors.New("menu loader is closed")

// Service loads the catalog from the remote source and owns its
// loading/error state. Overlapping loads share one round trip.
type Service struct {
	source interfaces.MenuSource
	logger logger.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	state  interfaces.MenuState
	closed bool
}

// NewService starts in the loading state: until the first load ends the
// catalog is pending, not empty.
func NewService(source interfaces.MenuSource, logger logger.Logger) *Service {
	return &Service{
		source: source,
		logger: logger,
		state:  interfaces.MenuState{Loading: true},
	}
}

// Load runs the full fetch/filter cycle. It is safe to call again after
// success or error.
func (s *Service) Load(ctx context.Context) ([]domain.MenuCategory, error) {
	v, err, shared := s.group.Do("menu", func() (interface{}, error) {
		return s.load(ctx)
	})
	if shared {
		s.logger.Debug("menu_load_shared", "Joined in-flight menu load", "", nil)
	}
	if err != nil {
		return nil, err
	}
	return v.([]domain.MenuCategory), nil
}

func (s *Service) load(ctx context.Context) ([]domain.MenuCategory, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()

	start := time.Now()
	categories, err := s.source.FetchMenu(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Torn down mid-flight: leave the discarded state alone.
	if s.closed {
		return nil, ErrClosed
	}
	s.state.Loading = false

	if err != nil {
		loadErr := asLoadError(err)
		s.state.Err = loadErr.Message
		s.state.Categories = nil
		s.logger.Error("menu_load_failed", "Failed to load menu", "", map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		}, err)
		return nil, loadErr
	}

	filtered := domain.FilterAvailable(categories)
	s.state.Err = ""
	s.state.Categories = filtered

	s.logger.Info("menu_loaded", fmt.Sprintf("Menu loaded with %d categories", len(filtered)), "", map[string]interface{}{
		"categories":  len(filtered),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return filtered, nil
}

func (s *Service) State() interfaces.MenuState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	state.Categories = append([]domain.MenuCategory(nil), s.state.Categories...)
	return state
}

// Item finds an available item in the loaded catalog.
func (s *Service) Item(id string) (domain.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FindItem(s.state.Categories, id)
}

// Close detaches the loader; completions arriving later are dropped.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func asLoadError(err error) *domain.MenuLoadError {
	var loadErr *domain.MenuLoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return &domain.MenuLoadError{Message: domain.MenuFetchFailedMessage, Err: err}
}
