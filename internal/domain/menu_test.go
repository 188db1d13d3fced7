package domain

import (
	"encoding/json"
	"testing"
)

func TestAvailability_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want Availability
	}{
		{`"Available"`, Available},
		{`"Sold Out"`, SoldOut},
		{`"sold out "`, SoldOut},
		{`""`, Available},
		{`"Limited"`, Available},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var got Availability
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMenuItem_DecodesSourcePayload(t *testing.T) {
	raw := `{"id":"p1","name":"Margherita","description":"Tomato, basil","price":"$12.50","priceValue":12.5,"image":"img/p1.jpg","status":"Available"}`

	var item MenuItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.ID != "p1" || item.PriceValue.String() != "12.5" || !item.IsAvailable() {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestFilterAvailable(t *testing.T) {
	categories := []MenuCategory{
		{Title: "Pizza", Items: []MenuItem{
			{ID: "p1", Status: Available},
			{ID: "p2", Status: SoldOut},
			{ID: "p3", Status: Available},
		}},
		{Title: "Desserts", Items: []MenuItem{
			{ID: "d1", Status: SoldOut},
		}},
		{Title: "Empty"},
		{Title: "Drinks", Items: []MenuItem{
			{ID: "w1", Status: Available},
		}},
	}

	got := FilterAvailable(categories)

	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Pizza" || got[1].Title != "Drinks" {
		t.Errorf("category order not preserved: %q, %q", got[0].Title, got[1].Title)
	}
	if len(got[0].Items) != 2 || got[0].Items[0].ID != "p1" || got[0].Items[1].ID != "p3" {
		t.Errorf("unexpected pizza items: %+v", got[0].Items)
	}
	for _, c := range got {
		for _, item := range c.Items {
			if item.Status == SoldOut {
				t.Errorf("sold out item %s leaked into catalog", item.ID)
			}
		}
	}

	if len(categories[0].Items) != 3 {
		t.Errorf("input catalog must not be mutated")
	}
}

func TestFindItem(t *testing.T) {
	categories := []MenuCategory{{Title: "Pizza", Items: []MenuItem{{ID: "p1", Name: "Margherita"}}}}

	if item, ok := FindItem(categories, "p1"); !ok || item.Name != "Margherita" {
		t.Errorf("expected to find p1, got %+v %v", item, ok)
	}
	if _, ok := FindItem(categories, "nope"); ok {
		t.Errorf("unexpected hit for unknown id")
	}
}
