package domain

import "errors"

// CartItem is a menu item with the quantity the visitor selected
type CartItem struct {
	MenuItem
	Quantity int `json:"quantity"`
}

var ErrItemNotFound = errors.New("item not found")
