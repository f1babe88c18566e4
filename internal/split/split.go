package split

import (
	"errors"
	"time"
)

// DefaultCurrency matches menu.DefaultCurrency.
const DefaultCurrency = "£"

var (
	ErrNotFound     = errors.New("split not found")
	ErrMenuNotFound = errors.New("referenced menu not found")
)

// Split is a saved bill-splitting session addressed by its share code.
// Totals are derived from the other fields and recomputed on every write.
type Split struct {
	ID            int64
	Code          string
	Name          string
	MenuCode      string
	People        []Person
	Items         []Item
	Quantities    []Quantity
	Totals        []PersonTotal
	Draft         *Draft
	Currency      string
	ServiceCharge float64
	TipPercent    float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// The types below are stored as JSON columns; the tags are the storage format.

type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Quantity is a person's share multiplier for one item.
type Quantity struct {
	ItemID   int64   `json:"itemId"`
	PersonID string  `json:"personId"`
	Quantity float64 `json:"quantity"`
}

type PersonTotal struct {
	Person            Person  `json:"person"`
	Subtotal          float64 `json:"subtotal"`
	Service           float64 `json:"service"`
	Tip               float64 `json:"tip"`
	Total             float64 `json:"total"`
	ExtraContribution float64 `json:"extraContribution,omitempty"`
	BaseTotal         float64 `json:"baseTotal,omitempty"`
}

// Draft keeps the editor's many-to-many assignment model so a split can be reopened
// for editing without reconstructing it from quantities.
type Draft struct {
	OrderItems []OrderItem `json:"orderItems"`
}

type OrderItem struct {
	InstanceID string   `json:"instanceId"`
	OriginalID int64    `json:"originalId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	OwnerID    string   `json:"ownerId,omitempty"`
	AssignedTo []string `json:"assignedTo"`
}
