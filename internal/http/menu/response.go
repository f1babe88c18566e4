package menu

import (
	"time"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/menu"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

type menuBody struct {
	Code      string    `json:"code"`
	Name      string    `json:"name,omitempty"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type itemBody struct {
	ID    int64   `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type menuResponse struct {
	Menu  menuBody   `json:"menu"`
	Items []itemBody `json:"items"`
}

type createResponse struct {
	Code  string     `json:"code"`
	Menu  menuBody   `json:"menu"`
	Items []itemBody `json:"items"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// splitSummary is what the "past splits from this menu" list needs.
type splitSummary struct {
	Code       string              `json:"code"`
	Name       string              `json:"name,omitempty"`
	Currency   string              `json:"currency"`
	People     []split.Person      `json:"people"`
	Totals     []split.PersonTotal `json:"totals"`
	GrandTotal float64             `json:"grandTotal"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func toBody(m *menu.Menu) menuBody {
	return menuBody{
		Code:      m.Code,
		Name:      m.Name,
		Currency:  m.Currency,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toItems(m *menu.Menu) []itemBody {
	items := make([]itemBody, len(m.Items))
	for i, it := range m.Items {
		items[i] = itemBody{ID: it.ID, Name: it.Name, Price: it.Price}
	}

	return items
}

func toResponse(m *menu.Menu) menuResponse {
	return menuResponse{Menu: toBody(m), Items: toItems(m)}
}

func toCreateResponse(m *menu.Menu) createResponse {
	return createResponse{Code: m.Code, Menu: toBody(m), Items: toItems(m)}
}

func toSplitSummary(sp *split.Split) splitSummary {
	var grand float64
	for _, t := range sp.Totals {
		grand += t.Total
	}

	return splitSummary{
		Code:       sp.Code,
		Name:       sp.Name,
		Currency:   sp.Currency,
		People:     sp.People,
		Totals:     sp.Totals,
		GrandTotal: allocation.Round2(grand),
		CreatedAt:  sp.CreatedAt,
		UpdatedAt:  sp.UpdatedAt,
	}
}
