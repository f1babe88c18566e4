package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
)

func base(id string, total, extra float64) allocation.PersonTotal {
	return allocation.PersonTotal{
		Person:            allocation.Person{ID: id, Name: id},
		Total:             total,
		BaseTotal:         total,
		ExtraContribution: extra,
	}
}

func finals(totals []allocation.PersonTotal) []float64 {
	out := make([]float64, len(totals))
	for i, t := range totals {
		out[i] = t.Total
	}

	return out
}

func TestApplyRedistribution(t *testing.T) {
	type testCase struct {
		name  string
		input []allocation.PersonTotal
		want  []float64
	}

	tests := []testCase{
		{
			name: "EvenAbsorption",
			input: []allocation.PersonTotal{
				base("A", 20, 0),
				base("B", 30, 0),
				base("C", 50, 10),
			},
			want: []float64{15, 25, 60},
		},
		{
			name: "SaturatedRecipientOverflowsToOthers",
			input: []allocation.PersonTotal{
				base("A", 5, 0),
				base("B", 100, 0),
				base("C", 40, 20),
			},
			want: []float64{0, 85, 60},
		},
		{
			name: "MultipleSaturationPasses",
			input: []allocation.PersonTotal{
				base("A", 1, 0),
				base("B", 2, 0),
				base("C", 30, 0),
				base("D", 10, 12),
			},
			want: []float64{0, 0, 21, 22},
		},
		{
			name: "NoContributors",
			input: []allocation.PersonTotal{
				base("A", 12.5, 0),
				base("B", 7.5, 0),
			},
			want: []float64{12.5, 7.5},
		},
		{
			name: "NoRecipients",
			input: []allocation.PersonTotal{
				base("A", 10, 5),
				base("B", 20, 5),
			},
			want: []float64{15, 25},
		},
		{
			name:  "Empty",
			input: nil,
			want:  []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocation.ApplyRedistribution(tt.input)

			assert.Equal(t, tt.want, finals(got))

			for _, pt := range got {
				assert.GreaterOrEqual(t, pt.Total, 0.0)
			}
		})
	}
}

func TestApplyRedistribution_Conservation(t *testing.T) {
	input := []allocation.PersonTotal{
		base("A", 20, 0),
		base("B", 30, 0),
		base("C", 50, 10),
	}

	got := allocation.ApplyRedistribution(input)

	var sumBase, sumFinal, sumReductions float64
	for i, pt := range got {
		sumBase += input[i].BaseTotal
		sumFinal += pt.Total

		if pt.ExtraContribution == 0 {
			sumReductions += pt.BaseTotal - pt.Total
		}
	}

	assert.InDelta(t, sumBase, sumFinal, 0.01)
	assert.InDelta(t, 10, sumReductions, 0.01)
	assert.Equal(t, 20.0, input[0].Total, "input must not be modified")
}

func TestValidateContributions(t *testing.T) {
	type testCase struct {
		name    string
		input   []allocation.PersonTotal
		wantErr error
	}

	tests := []testCase{
		{
			name:  "WithinWhatOthersOwe",
			input: []allocation.PersonTotal{base("A", 20, 0), base("B", 30, 10)},
		},
		{
			name:  "ExactlyWhatOthersOwe",
			input: []allocation.PersonTotal{base("A", 20, 0), base("B", 30, 20)},
		},
		{
			name:    "Exceeds",
			input:   []allocation.PersonTotal{base("A", 20, 0), base("B", 30, 20.01)},
			wantErr: allocation.ErrExcessContribution,
		},
		{
			name:    "NobodyToAbsorb",
			input:   []allocation.PersonTotal{base("A", 20, 5), base("B", 30, 5)},
			wantErr: allocation.ErrExcessContribution,
		},
		{
			name:  "NoExtras",
			input: []allocation.PersonTotal{base("A", 20, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := allocation.ValidateContributions(tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestSettle(t *testing.T) {
	people := []allocation.Person{alice, bob, charlie}
	items := []allocation.PricedItem{{ID: 1, Price: 30}, {ID: 2, Price: 30}}
	quantities := []allocation.Quantity{
		{ItemID: 1, PersonID: "a", Quantity: 1},
		{ItemID: 2, PersonID: "b", Quantity: 0.5},
		{ItemID: 2, PersonID: "c", Quantity: 0.5},
	}

	t.Run("AppliesExtras", func(t *testing.T) {
		res, err := allocation.Settle(people, items, quantities, 0, 0, map[string]float64{"a": 6})
		require.NoError(t, err)

		got := totalsByID(res.Totals)
		assert.Equal(t, 36.0, got["a"].Total)
		assert.Equal(t, 30.0, got["a"].BaseTotal)
		assert.Equal(t, 6.0, got["a"].ExtraContribution)
		assert.Equal(t, 12.0, got["b"].Total)
		assert.Equal(t, 12.0, got["c"].Total)
		assert.Equal(t, 60.0, res.GrandTotal)
	})

	t.Run("NoExtrasLeavesTotalsUntouched", func(t *testing.T) {
		res, err := allocation.Settle(people, items, quantities, 0, 0, nil)
		require.NoError(t, err)

		got := totalsByID(res.Totals)
		assert.Equal(t, 30.0, got["a"].Total)
		assert.Zero(t, got["a"].BaseTotal)
	})

	t.Run("NegativeExtraIgnored", func(t *testing.T) {
		res, err := allocation.Settle(people, items, quantities, 0, 0, map[string]float64{"a": -5, "b": 3})
		require.NoError(t, err)

		got := totalsByID(res.Totals)
		assert.Equal(t, 28.5, got["a"].Total)
		assert.Equal(t, 18.0, got["b"].Total)
		assert.Equal(t, 13.5, got["c"].Total)
	})

	t.Run("RejectsExcess", func(t *testing.T) {
		_, err := allocation.Settle(people, items, quantities, 0, 0, map[string]float64{"a": 31})
		assert.ErrorIs(t, err, allocation.ErrExcessContribution)
	})
}

func TestRedistribute_OnlyNonPositiveExtras(t *testing.T) {
	res := allocation.Compute([]allocation.Person{alice, bob}, []allocation.Item{{Price: 20, Assignees: []string{"a", "b"}}}, 0, 0)

	got, err := allocation.Redistribute(res, map[string]float64{"a": 0, "b": -3})
	require.NoError(t, err)
	assert.Equal(t, res, got)

	got, err = allocation.Redistribute(res, map[string]float64{"a": 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{14, 6}, finals(got.Totals))
}
