// Package allocation computes what each participant owes for a shared bill.
//
// Two input shapes are supported:
//
//   - Item: a full-priced line split evenly between its assignees (the editing model).
//   - PricedItem + Quantity: flattened links carrying a per-person share multiplier,
//     which is how persisted splits store assignments.
//
// Every function here is pure. Sums are accumulated at full precision and each output
// field is rounded once, to two decimal places, half away from zero.
package allocation

// Person is a participant in a split. Names are freeform and need not be unique.
type Person struct {
	ID   string
	Name string
}

// Item is a billable line whose full Price is split evenly between Assignees.
// An item with no assignees is unbilled and contributes to nobody.
type Item struct {
	Price     float64
	Assignees []string
}

// PricedItem is an item in the flattened representation.
type PricedItem struct {
	ID    int64
	Price float64
}

// Quantity links one person to one item with a share multiplier. The multiplier may be
// fractional; the sum across people is not forced to 1.
type Quantity struct {
	ItemID   int64
	PersonID string
	Quantity float64
}

// PersonTotal is one person's share of the bill.
// ExtraContribution and BaseTotal are only meaningful after redistribution.
type PersonTotal struct {
	Person            Person
	Subtotal          float64
	Service           float64
	Tip               float64
	Total             float64
	ExtraContribution float64
	BaseTotal         float64
}

// Result holds per-person totals plus bill-level sums. The bill-level sums are taken over
// unrounded per-person values and rounded once, so GrandTotal equals the price of every
// billed item even when individual shares round down.
type Result struct {
	Totals     []PersonTotal
	Subtotal   float64
	Service    float64
	Tip        float64
	GrandTotal float64
}

// ComputePersonTotals returns each person's subtotal, service, tip and total for items
// split evenly between their assignees.
func ComputePersonTotals(people []Person, items []Item, serviceChargePct, tipPct float64) []PersonTotal {
	return Compute(people, items, serviceChargePct, tipPct).Totals
}

// Compute is ComputePersonTotals with bill-level sums.
func Compute(people []Person, items []Item, serviceChargePct, tipPct float64) Result {
	subtotals := make(map[string]float64, len(people))

	for _, item := range items {
		assignees := uniqueAssignees(item.Assignees)
		if len(assignees) == 0 {
			continue
		}

		share := item.Price / float64(len(assignees))
		for _, id := range assignees {
			subtotals[id] += share
		}
	}

	return finalize(people, subtotals, serviceChargePct, tipPct)
}

// uniqueAssignees drops repeated ids, keeping first-seen order.
func uniqueAssignees(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// ComputeFromQuantities returns per-person totals for the flattened representation:
// each link contributes price × quantity to its person. Links to unknown items are ignored.
func ComputeFromQuantities(people []Person, items []PricedItem, quantities []Quantity, serviceChargePct, tipPct float64) Result {
	prices := make(map[int64]float64, len(items))
	for _, item := range items {
		prices[item.ID] = item.Price
	}

	subtotals := make(map[string]float64, len(people))

	for _, q := range quantities {
		price, ok := prices[q.ItemID]
		if !ok {
			continue
		}

		subtotals[q.PersonID] += price * q.Quantity
	}

	return finalize(people, subtotals, serviceChargePct, tipPct)
}

func finalize(people []Person, subtotals map[string]float64, serviceChargePct, tipPct float64) Result {
	res := Result{Totals: make([]PersonTotal, 0, len(people))}

	var sumSubtotal, sumService, sumTip, sumTotal float64

	for _, p := range people {
		subtotal := subtotals[p.ID]
		service := subtotal * serviceChargePct / 100
		tip := subtotal * tipPct / 100
		total := subtotal + service + tip

		sumSubtotal += subtotal
		sumService += service
		sumTip += tip
		sumTotal += total

		res.Totals = append(res.Totals, PersonTotal{
			Person:   p,
			Subtotal: Round2(subtotal),
			Service:  Round2(service),
			Tip:      Round2(tip),
			Total:    Round2(total),
		})
	}

	res.Subtotal = Round2(sumSubtotal)
	res.Service = Round2(sumService)
	res.Tip = Round2(sumTip)
	res.GrandTotal = Round2(sumTotal)

	return res
}
