package split_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/easysplit/internal/allocation"
	"github.com/MrJamesThe3rd/easysplit/internal/code"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

func dinner() split.Params {
	return split.Params{
		Name: "Friday",
		People: []split.Person{
			{ID: "a", Name: "Alice"},
			{ID: "b", Name: "Bob"},
			{ID: "c", Name: "Charlie"},
		},
		Items: []split.Item{
			{ID: 1, Name: "Pizza", Price: 30},
			{ID: 2, Name: "Drinks", Price: 15},
			{ID: 3, Name: "Dessert", Price: 10},
		},
		Quantities: []split.Quantity{
			{ItemID: 1, PersonID: "a", Quantity: 0.5},
			{ItemID: 1, PersonID: "b", Quantity: 0.5},
			{ItemID: 2, PersonID: "c", Quantity: 1},
			{ItemID: 3, PersonID: "a", Quantity: 1.0 / 3},
			{ItemID: 3, PersonID: "b", Quantity: 1.0 / 3},
			{ItemID: 3, PersonID: "c", Quantity: 1.0 / 3},
		},
	}
}

func TestService_Create(t *testing.T) {
	type args struct {
		params split.Params
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *split.MockRepository)
		wantErr   bool
		wantErrIs error
		check     func(t *testing.T, got *split.Split)
	}

	withMenu := dinner()
	withMenu.MenuCode = "menu0001"

	withExtras := dinner()
	withExtras.Extras = map[string]float64{"c": 3}

	excess := dinner()
	excess.Extras = map[string]float64{"c": 100}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: dinner()},
			setupMock: func(m *split.MockRepository) {
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().
					CreateSplit(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, s *split.Split) error {
						s.ID = 1
						return nil
					})
			},
			check: func(t *testing.T, got *split.Split) {
				assert.Len(t, got.Code, code.Length)
				assert.Equal(t, split.DefaultCurrency, got.Currency)
				require.Len(t, got.Totals, 3)

				for _, pt := range got.Totals {
					assert.Equal(t, 18.33, pt.Total, pt.Person.Name)
				}
			},
		},
		{
			name: "MenuReference",
			args: args{params: withMenu},
			setupMock: func(m *split.MockRepository) {
				m.EXPECT().MenuExists(gomock.Any(), "MENU0001").Return(true, nil)
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().CreateSplit(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, got *split.Split) {
				assert.Equal(t, "MENU0001", got.MenuCode)
			},
		},
		{
			name: "MissingMenu",
			args: args{params: withMenu},
			setupMock: func(m *split.MockRepository) {
				m.EXPECT().MenuExists(gomock.Any(), "MENU0001").Return(false, nil)
			},
			wantErr:   true,
			wantErrIs: split.ErrMenuNotFound,
		},
		{
			name: "ExtrasRedistributed",
			args: args{params: withExtras},
			setupMock: func(m *split.MockRepository) {
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().CreateSplit(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, got *split.Split) {
				byID := map[string]split.PersonTotal{}
				for _, pt := range got.Totals {
					byID[pt.Person.ID] = pt
				}

				assert.Equal(t, 21.33, byID["c"].Total)
				assert.Equal(t, 3.0, byID["c"].ExtraContribution)
				assert.Equal(t, 16.83, byID["a"].Total)
				assert.Equal(t, 16.83, byID["b"].Total)
			},
		},
		{
			name:      "ExcessContributionNotSaved",
			args:      args{params: excess},
			wantErr:   true,
			wantErrIs: allocation.ErrExcessContribution,
		},
		{
			name: "RepoError",
			args: args{params: dinner()},
			setupMock: func(m *split.MockRepository) {
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().CreateSplit(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := split.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := split.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := split.NewMockRepository(ctrl)
	repo.EXPECT().
		UpdateSplit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *split.Split) error {
			assert.Equal(t, "ABCD1234", s.Code)
			assert.Len(t, s.Totals, 3)

			return nil
		})
	repo.EXPECT().UpdateSplit(gomock.Any(), gomock.Any()).Return(split.ErrNotFound)

	svc := split.NewService(repo)

	got, err := svc.Update(context.Background(), "abcd1234", dinner())
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", got.Code)

	_, err = svc.Update(context.Background(), "abcd1234", dinner())
	assert.ErrorIs(t, err, split.ErrNotFound)
}

func TestService_GetAndList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := split.NewMockRepository(ctrl)
	repo.EXPECT().GetSplit(gomock.Any(), "ABCD1234").Return(&split.Split{Code: "ABCD1234"}, nil)
	repo.EXPECT().ListSplitsByMenuCode(gomock.Any(), "MENU0001").Return([]*split.Split{{Code: "B"}, {Code: "A"}}, nil)

	svc := split.NewService(repo)

	got, err := svc.Get(context.Background(), "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", got.Code)

	list, err := svc.ListByMenu(context.Background(), "menu0001")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSettle(t *testing.T) {
	params := dinner()
	params.ServiceCharge = 10
	params.TipPercent = 5

	res, err := split.Settle(params)
	require.NoError(t, err)

	assert.Equal(t, 55.0, res.Subtotal)
	assert.Equal(t, 5.5, res.Service)
	assert.Equal(t, 2.75, res.Tip)
	assert.Equal(t, 63.25, res.GrandTotal)
}
