package split

import (
	"time"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

type splitResponse struct {
	Code          string              `json:"code"`
	Name          string              `json:"name,omitempty"`
	MenuCode      string              `json:"menuCode,omitempty"`
	People        []split.Person      `json:"people"`
	Items         []split.Item        `json:"items"`
	Quantities    []split.Quantity    `json:"quantities"`
	Totals        []split.PersonTotal `json:"totals"`
	Draft         *split.Draft        `json:"draft,omitempty"`
	Currency      string              `json:"currency"`
	ServiceCharge float64             `json:"serviceCharge"`
	TipPercent    float64             `json:"tipPercent"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type createResponse struct {
	Code  string        `json:"code"`
	Split splitResponse `json:"split"`
}

type calculateResponse struct {
	Totals     []split.PersonTotal `json:"totals"`
	Subtotal   float64             `json:"subtotal"`
	Service    float64             `json:"service"`
	Tip        float64             `json:"tip"`
	GrandTotal float64             `json:"grandTotal"`
}

func toResponse(sp *split.Split) splitResponse {
	return splitResponse{
		Code:          sp.Code,
		Name:          sp.Name,
		MenuCode:      sp.MenuCode,
		People:        sp.People,
		Items:         sp.Items,
		Quantities:    sp.Quantities,
		Totals:        sp.Totals,
		Draft:         sp.Draft,
		Currency:      sp.Currency,
		ServiceCharge: sp.ServiceCharge,
		TipPercent:    sp.TipPercent,
		CreatedAt:     sp.CreatedAt,
		UpdatedAt:     sp.UpdatedAt,
	}
}

func toCalculateResponse(res allocation.Result) calculateResponse {
	return calculateResponse{
		Totals:     split.Totals(res),
		Subtotal:   res.Subtotal,
		Service:    res.Service,
		Tip:        res.Tip,
		GrandTotal: res.GrandTotal,
	}
}
