package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Availability is the menu item flag served by the menu source.
type Availability string

const (
	Available Availability = "Available"
	SoldOut   Availability = "Sold Out"
)

// UnmarshalJSON treats any value other than "Sold Out" as available.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(raw), string(SoldOut)) {
		*a = SoldOut
	} else {
		*a = Available
	}
	return nil
}

// MenuItem represents a dish as served by the remote menu source
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       string          `json:"price,omitempty"`
	PriceValue  decimal.Decimal `json:"priceValue"`
	Image       string          `json:"image"`
	Status      Availability    `json:"status"`
}

func (m MenuItem) IsAvailable() bool {
	return m.Status != SoldOut
}

// MenuCategory is a titled, ordered group of menu items
type MenuCategory struct {
	Title string     `json:"title"`
	Items []MenuItem `json:"items"`
}

// FilterAvailable drops sold out items, then drops categories left empty.
// Source order of categories and items is preserved.
func FilterAvailable(categories []MenuCategory) []MenuCategory {
	result := make([]MenuCategory, 0, len(categories))
	for _, category := range categories {
		items := make([]MenuItem, 0, len(category.Items))
		for _, item := range category.Items {
			if item.IsAvailable() {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		result = append(result, MenuCategory{Title: category.Title, Items: items})
	}
	return result
}

// FindItem looks an item up by id across all categories.
func FindItem(categories []MenuCategory, id string) (MenuItem, bool) {
	for _, category := range categories {
		for _, item := range category.Items {
			if item.ID == id {
				return item, true
			}
		}
	}
	return MenuItem{}, false
}

// Messages shown in place of the menu when loading fails.
const (
	MenuFetchFailedMessage = "An error occurred while trying to fetch the menu."
	MenuLoadFailedMessage  = "Failed to load the menu."
)

// MenuLoadError carries the human-readable message for a failed menu load.
type MenuLoadError struct {
	Message string
	Err     error
}

func (e *MenuLoadError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *MenuLoadError) Unwrap() error {
	return e.Err
}
