package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/app/cart"
	"github.com/YelzhanWeb/storefront/internal/app/checkout"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
	"github.com/google/uuid"
)

// Session is one visitor's cart and checkout panel. Nothing in it outlives
// the process.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Service

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// IsActive checks the session against the idle timeout
func (s *Session) IsActive(now time.Time, idleTimeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) <= idleTimeout
}

type Registry struct {
	submitter   interfaces.OrderSubmitter
	journal     interfaces.DispatchRepository
	publisher   interfaces.EventPublisher
	logger      logger.Logger
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(
	submitter interfaces.OrderSubmitter,
	journal interfaces.DispatchRepository,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
	idleTimeout time.Duration,
) *Registry {
	return &Registry{
		submitter:   submitter,
		journal:     journal,
		publisher:   publisher,
		logger:      logger,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// SetClock replaces the clock used for idle tracking and checkout checks.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if s, ok := r.sessions[id]; ok {
		s.touch(now)
		return s, false
	}

	s := r.newSessionLocked()
	s.touch(now)
	r.sessions[s.ID] = s

	r.logger.Debug("session_created", "Storefront session created", s.ID, nil)
	return s, true
}

func (r *Registry) newSessionLocked() *Session {
	store := cart.NewStore(r.logger)
	workflow := checkout.NewService(store, r.submitter, r.journal, r.publisher, r.logger)
	workflow.SetClock(r.now)

	// Adding to the cart brings the panel to the front.
	store.Subscribe(func(e cart.Event) {
		if e.Kind == cart.EventOpenPanel {
			workflow.OpenPanel()
		}
	})

	return &Session{
		ID:       uuid.NewString(),
		Cart:     store,
		Checkout: workflow,
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops idle sessions and tears their workflows down. Sessions with
// a submission in flight are kept until it completes.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if s.IsActive(now, r.idleTimeout) || s.Checkout.Snapshot().Submitting {
			continue
		}
		s.Checkout.Close()
		delete(r.sessions, id)
		removed++
	}

	if removed > 0 {
		r.logger.Info("sessions_expired", fmt.Sprintf("Expired %d idle sessions", removed), "", map[string]interface{}{
			"removed": removed,
			"active":  len(r.sessions),
		})
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.Checkout.Close()
		delete(r.sessions, id)
	}
}
