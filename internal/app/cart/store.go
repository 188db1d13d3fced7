package cart

import (
	"sync"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
)

type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventItemRemoved     EventKind = "item_removed"
	EventQuantityUpdated EventKind = "quantity_updated"
	EventCleared         EventKind = "cleared"
	// EventOpenPanel asks the shell to bring the cart panel to the front.
	EventOpenPanel EventKind = "open_panel"
)

type Event struct {
	Kind     EventKind
	ItemID   string
	Quantity int
}

type Listener func(Event)

// Store owns the cart entries. It holds at most one entry per item id.
type Store struct {
	mu        sync.Mutex
	items     []domain.CartItem
	listeners []Listener
	logger    logger.Logger
}

func NewStore(logger logger.Logger) *Store {
	return &Store{logger: logger}
}

// Subscribe registers l for every event emitted after this call.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) Add(item domain.MenuItem) {
	s.mu.Lock()
	quantity := 1
	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity++
		quantity = s.items[i].Quantity
	} else {
		s.items = append(s.items, domain.CartItem{MenuItem: item, Quantity: 1})
	}
	s.mu.Unlock()

	s.logger.Debug("cart_item_added", "Item added to cart", "", map[string]interface{}{
		"item_id":  item.ID,
		"quantity": quantity,
	})
	s.emit(Event{Kind: EventItemAdded, ItemID: item.ID, Quantity: quantity})
	s.emit(Event{Kind: EventOpenPanel})
}

func (s *Store) Remove(itemID string) {
	s.mu.Lock()
	i := s.indexOf(itemID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.mu.Unlock()

	s.emit(Event{Kind: EventItemRemoved, ItemID: itemID})
}

// UpdateQuantity sets the quantity exactly; quantity <= 0 removes the entry.
func (s *Store) UpdateQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		s.Remove(itemID)
		return
	}

	s.mu.Lock()
	i := s.indexOf(itemID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity = quantity
	s.mu.Unlock()

	s.emit(Event{Kind: EventQuantityUpdated, ItemID: itemID, Quantity: quantity})
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.emit(Event{Kind: EventCleared})
}

// Items returns a copy in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Count is the total number of units, as shown on the header badge.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Totals is recomputed on every call.
func (s *Store) Totals() domain.OrderTotals {
	return domain.ComputeTotals(s.Items())
}

func (s *Store) indexOf(itemID string) int {
	for i, item := range s.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) emit(e Event) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(e)
	}
}
