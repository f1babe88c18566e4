package menu

import (
	"errors"
	"time"
)

// DefaultCurrency is used when a menu is created without one.
const DefaultCurrency = "£"

var ErrNotFound = errors.New("menu not found")

// Menu is a reusable list of priced items saved under a share code.
type Menu struct {
	ID        int64
	Code      string
	Name      string
	Currency  string
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one line on a menu. Items keep the order they were submitted in.
type Item struct {
	ID    int64
	Name  string
	Price float64
}
