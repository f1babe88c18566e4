package allocation

import (
	"errors"
	"fmt"
	"math"
)

// ErrExcessContribution is returned when the extra amounts declared by contributors are
// more than everyone else owes in total.
var ErrExcessContribution = errors.New("extra contributions exceed what others owe")

// epsilon absorbs float noise when deciding whether money is left to hand out or a
// recipient has any room left.
const epsilon = 1e-9

// WithExtras prepares totals for redistribution: BaseTotal takes the computed Total and
// ExtraContribution takes the person's entry in extras. Negative extras count as none.
func WithExtras(totals []PersonTotal, extras map[string]float64) []PersonTotal {
	out := make([]PersonTotal, len(totals))

	for i, t := range totals {
		t.BaseTotal = t.Total
		t.ExtraContribution = Round2(math.Max(0, extras[t.Person.ID]))
		out[i] = t
	}

	return out
}

// ValidateContributions checks that the declared extras can be absorbed by the people who
// declared none. It must pass before ApplyRedistribution runs on data that will be saved.
func ValidateContributions(totals []PersonTotal) error {
	var extra, owed float64

	for _, t := range totals {
		if t.ExtraContribution > 0 {
			extra += t.ExtraContribution
			continue
		}

		owed += t.BaseTotal
	}

	if Round2(extra) > Round2(owed) {
		return fmt.Errorf("%w: %.2f extra against %.2f owed", ErrExcessContribution, extra, owed)
	}

	return nil
}

// ApplyRedistribution spreads the sum of every ExtraContribution evenly over the people
// who contributed nothing, reducing their BaseTotal. A recipient is never reduced below
// zero: once saturated it drops out and the unapplied remainder is shared among the rest
// on the next pass. Contributors end at BaseTotal + ExtraContribution.
//
// With no recipients the extras stay unapplied. The input slice is not modified.
func ApplyRedistribution(totals []PersonTotal) []PersonTotal {
	out := make([]PersonTotal, len(totals))
	copy(out, totals)

	reductions := make([]float64, len(out))

	var remaining float64

	active := make([]int, 0, len(out))

	for i, t := range out {
		if t.ExtraContribution > 0 {
			remaining += t.ExtraContribution
			continue
		}

		active = append(active, i)
	}

	for remaining > epsilon && len(active) > 0 {
		share := remaining / float64(len(active))
		saturated := false

		for _, i := range active {
			room := math.Max(0, out[i].BaseTotal-reductions[i])
			applied := math.Min(share, room)

			reductions[i] += applied
			remaining -= applied

			if applied < share {
				saturated = true
			}
		}

		if !saturated {
			break
		}

		next := make([]int, 0, len(active))
		for _, i := range active {
			if out[i].BaseTotal-reductions[i] > epsilon {
				next = append(next, i)
			}
		}

		active = next
	}

	for i := range out {
		if out[i].ExtraContribution > 0 {
			out[i].Total = Round2(out[i].BaseTotal + out[i].ExtraContribution)
			continue
		}

		out[i].Total = Round2(math.Max(0, out[i].BaseTotal-reductions[i]))
	}

	return out
}

// Redistribute applies extras to an already computed result. When nobody contributes
// extra the result is returned unchanged.
func Redistribute(res Result, extras map[string]float64) (Result, error) {
	hasExtra := false

	for _, v := range extras {
		if v > 0 {
			hasExtra = true
			break
		}
	}

	if !hasExtra {
		return res, nil
	}

	totals := WithExtras(res.Totals, extras)
	if err := ValidateContributions(totals); err != nil {
		return Result{}, err
	}

	res.Totals = ApplyRedistribution(totals)

	return res, nil
}

// Settle computes quantity-based totals and applies extra contributions in one step.
func Settle(people []Person, items []PricedItem, quantities []Quantity, serviceChargePct, tipPct float64, extras map[string]float64) (Result, error) {
	return Redistribute(ComputeFromQuantities(people, items, quantities, serviceChargePct, tipPct), extras)
}
