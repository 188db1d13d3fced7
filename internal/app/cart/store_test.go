package cart

import (
	"math/rand"
	"testing"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

func menuItem(id, price string) domain.MenuItem {
	return domain.MenuItem{ID: id, Name: "Item " + id, PriceValue: decimal.RequireFromString(price), Status: domain.Available}
}

func assertUnique(t *testing.T, s *Store) {
	t.Helper()
	seen := make(map[string]bool)
	for _, item := range s.Items() {
		if seen[item.ID] {
			t.Fatalf("duplicate entry for %s", item.ID)
		}
		if item.Quantity < 1 {
			t.Fatalf("entry %s has quantity %d", item.ID, item.Quantity)
		}
		seen[item.ID] = true
	}
}

func TestStore_AddMergesDuplicates(t *testing.T) {
	s := NewStore(logger.Discard())

	s.Add(menuItem("p1", "12.50"))
	s.Add(menuItem("p1", "12.50"))

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", items[0].Quantity)
	}
	if s.Count() != 2 {
		t.Errorf("count = %d, want 2", s.Count())
	}
}

func TestStore_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		wantLen  int
		wantQty  int
	}{
		{"set exactly", 5, 1, 5},
		{"zero removes", 0, 0, 0},
		{"negative removes", -1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(logger.Discard())
			s.Add(menuItem("p1", "10"))
			s.Add(menuItem("p1", "10"))

			s.UpdateQuantity("p1", tt.quantity)

			items := s.Items()
			if len(items) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(items), tt.wantLen)
			}
			if tt.wantLen == 1 && items[0].Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", items[0].Quantity, tt.wantQty)
			}
		})
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	s := NewStore(logger.Discard())
	s.Add(menuItem("a", "1"))
	s.Add(menuItem("b", "2"))

	s.Remove("missing")
	if s.Len() != 2 {
		t.Fatalf("removing an absent id must be a no-op")
	}

	s.Remove("a")
	if items := s.Items(); len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("unexpected items after remove: %+v", items)
	}

	s.UpdateQuantity("missing", 3)
	if s.Len() != 1 {
		t.Fatalf("updating an absent id must not insert it")
	}

	s.Clear()
	if !s.IsEmpty() {
		t.Fatalf("cart should be empty after clear")
	}
	s.Clear()
}

func TestStore_Totals(t *testing.T) {
	s := NewStore(logger.Discard())
	if got := s.Totals().Formatted(); got.Total != "0.00" {
		t.Errorf("empty cart total = %s", got.Total)
	}

	s.Add(menuItem("a", "10"))
	s.Add(menuItem("a", "10"))
	s.Add(menuItem("b", "5"))

	got := s.Totals().Formatted()
	if got.Subtotal != "25.00" || got.ServiceFee != "5.00" || got.Total != "30.00" {
		t.Errorf("unexpected totals: %+v", got)
	}

	s.UpdateQuantity("b", 0)
	if got := s.Totals().Formatted(); got.Subtotal != "20.00" {
		t.Errorf("totals must follow cart changes, got %+v", got)
	}
}

func TestStore_EmitsOpenPanelOnAdd(t *testing.T) {
	s := NewStore(logger.Discard())

	var kinds []EventKind
	s.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	s.Add(menuItem("a", "1"))
	s.UpdateQuantity("a", 3)
	s.Remove("a")
	s.Clear()

	want := []EventKind{EventItemAdded, EventOpenPanel, EventQuantityUpdated, EventItemRemoved, EventCleared}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestStore_UniquenessUnderRandomOperations(t *testing.T) {
	s := NewStore(logger.Discard())
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}

	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(5) {
		case 0, 1:
			s.Add(menuItem(id, "1"))
		case 2:
			s.Remove(id)
		case 3:
			s.UpdateQuantity(id, rng.Intn(7)-2)
		case 4:
			if rng.Intn(10) == 0 {
				s.Clear()
			}
		}
		assertUnique(t, s)
	}
}
