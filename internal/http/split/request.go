package split

import (
	"strconv"

	"github.com/MrJamesThe3rd/easysplit/internal/http/respond"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

type personRequest struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=80"`
}

type itemRequest struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name" validate:"required,max=120"`
	Price float64 `json:"price" validate:"gte=0"`
}

type quantityRequest struct {
	ItemID   int64   `json:"itemId"`
	PersonID string  `json:"personId" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type totalRequest struct {
	Person            personRequest `json:"person"`
	Subtotal          float64       `json:"subtotal" validate:"gte=0"`
	Service           float64       `json:"service" validate:"gte=0"`
	Tip               float64       `json:"tip" validate:"gte=0"`
	Total             float64       `json:"total" validate:"gte=0"`
	ExtraContribution float64       `json:"extraContribution" validate:"gte=0"`
	BaseTotal         float64       `json:"baseTotal" validate:"gte=0"`
}

type splitRequest struct {
	Name          string            `json:"name" validate:"max=120"`
	MenuCode      string            `json:"menuCode" validate:"omitempty,alphanum,min=6,max=8"`
	People        []personRequest   `json:"people" validate:"required,min=1,max=100,unique=ID,dive"`
	Items         []itemRequest     `json:"items" validate:"required,min=1,max=1000,unique=ID,dive"`
	Quantities    []quantityRequest `json:"quantities" validate:"required,min=1,dive"`
	Currency      string            `json:"currency" validate:"required,max=8"`
	ServiceCharge float64           `json:"serviceCharge" validate:"gte=0,lte=100"`
	TipPercent    float64           `json:"tipPercent" validate:"gte=0,lte=100"`
	Totals        []totalRequest    `json:"totals" validate:"required,min=1,dive"`
	Draft         *split.Draft      `json:"draft"`
}

// calculateRequest is splitRequest without the fields that only matter for storage.
// Totals are optional and only read for extra contributions.
type calculateRequest struct {
	People        []personRequest   `json:"people" validate:"required,min=1,max=100,unique=ID,dive"`
	Items         []itemRequest     `json:"items" validate:"required,min=1,max=1000,unique=ID,dive"`
	Quantities    []quantityRequest `json:"quantities" validate:"required,min=1,dive"`
	ServiceCharge float64           `json:"serviceCharge" validate:"gte=0,lte=100"`
	TipPercent    float64           `json:"tipPercent" validate:"gte=0,lte=100"`
	Totals        []totalRequest    `json:"totals" validate:"omitempty,dive"`
}

func (req splitRequest) params() split.Params {
	p := settleParams(req.People, req.Items, req.Quantities, req.Totals)
	p.Name = req.Name
	p.MenuCode = req.MenuCode
	p.Currency = req.Currency
	p.ServiceCharge = req.ServiceCharge
	p.TipPercent = req.TipPercent
	p.Draft = req.Draft

	return p
}

func (req calculateRequest) params() split.Params {
	p := settleParams(req.People, req.Items, req.Quantities, req.Totals)
	p.ServiceCharge = req.ServiceCharge
	p.TipPercent = req.TipPercent

	return p
}

func settleParams(people []personRequest, items []itemRequest, quantities []quantityRequest, totals []totalRequest) split.Params {
	p := split.Params{
		People:     make([]split.Person, len(people)),
		Items:      make([]split.Item, len(items)),
		Quantities: make([]split.Quantity, len(quantities)),
	}

	for i, pr := range people {
		p.People[i] = split.Person{ID: pr.ID, Name: pr.Name}
	}

	for i, it := range items {
		p.Items[i] = split.Item{ID: it.ID, Name: it.Name, Price: it.Price}
	}

	for i, q := range quantities {
		p.Quantities[i] = split.Quantity{ItemID: q.ItemID, PersonID: q.PersonID, Quantity: q.Quantity}
	}

	for _, t := range totals {
		if t.ExtraContribution > 0 {
			if p.Extras == nil {
				p.Extras = make(map[string]float64)
			}

			p.Extras[t.Person.ID] = t.ExtraContribution
		}
	}

	return p
}

// crossCheck reports links to people or items that are not in the request.
func crossCheck(people []personRequest, items []itemRequest, quantities []quantityRequest, totals []totalRequest) []respond.FieldError {
	personIDs := make(map[string]struct{}, len(people))
	for _, p := range people {
		personIDs[p.ID] = struct{}{}
	}

	itemIDs := make(map[int64]struct{}, len(items))
	for _, it := range items {
		itemIDs[it.ID] = struct{}{}
	}

	var fields []respond.FieldError

	for i, q := range quantities {
		prefix := "quantities[" + strconv.Itoa(i) + "]"

		if _, ok := itemIDs[q.ItemID]; !ok {
			fields = append(fields, respond.FieldError{Field: prefix + ".itemId", Message: "references an unknown item"})
		}

		if _, ok := personIDs[q.PersonID]; !ok {
			fields = append(fields, respond.FieldError{Field: prefix + ".personId", Message: "references an unknown person"})
		}
	}

	for i, t := range totals {
		if _, ok := personIDs[t.Person.ID]; !ok {
			fields = append(fields, respond.FieldError{
				Field:   "totals[" + strconv.Itoa(i) + "].person.id",
				Message: "references an unknown person",
			})
		}
	}

	return fields
}
