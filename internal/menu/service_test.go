package menu_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/easysplit/internal/code"
	"github.com/MrJamesThe3rd/easysplit/internal/menu"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params menu.Params
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *menu.MockRepository)
		wantErr   bool
		wantErrIs error
		check     func(t *testing.T, got *menu.Menu)
	}

	lunch := menu.Params{
		Name:  " Lunch ",
		Items: []menu.ItemParams{{Name: "Soup", Price: 6.5}, {Name: "Bread ", Price: 2}},
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: lunch},
			setupMock: func(m *menu.MockRepository) {
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().
					CreateMenu(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mn *menu.Menu) error {
						mn.ID = 7
						return nil
					})
			},
			check: func(t *testing.T, got *menu.Menu) {
				assert.EqualValues(t, 7, got.ID)
				assert.Len(t, got.Code, code.Length)
				assert.Equal(t, "Lunch", got.Name)
				assert.Equal(t, menu.DefaultCurrency, got.Currency)
				assert.Equal(t, []menu.Item{{Name: "Soup", Price: 6.5}, {Name: "Bread", Price: 2}}, got.Items)
			},
		},
		{
			name: "RetriesTakenCode",
			args: args{params: menu.Params{Currency: "€", Items: []menu.ItemParams{{Name: "Tea", Price: 2}}}},
			setupMock: func(m *menu.MockRepository) {
				gomock.InOrder(
					m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(true, nil),
					m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil),
				)
				m.EXPECT().CreateMenu(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, got *menu.Menu) {
				assert.Equal(t, "€", got.Currency)
			},
		},
		{
			name: "CodesExhausted",
			args: args{params: lunch},
			setupMock: func(m *menu.MockRepository) {
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(true, nil).Times(10)
			},
			wantErr:   true,
			wantErrIs: code.ErrExhausted,
		},
		{
			name: "RepoError",
			args: args{params: lunch},
			setupMock: func(m *menu.MockRepository) {
				m.EXPECT().CodeTaken(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().CreateMenu(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := menu.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := menu.NewService(repo)
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
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := menu.NewMockRepository(ctrl)
	repo.EXPECT().GetMenu(gomock.Any(), "ABCD1234").Return(&menu.Menu{Code: "ABCD1234"}, nil)
	repo.EXPECT().GetMenu(gomock.Any(), "MISSING1").Return(nil, menu.ErrNotFound)

	svc := menu.NewService(repo)

	got, err := svc.Get(context.Background(), "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "ABCD1234", got.Code)

	_, err = svc.Get(context.Background(), "missing1")
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := menu.NewMockRepository(ctrl)
	repo.EXPECT().
		UpdateMenu(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *menu.Menu) error {
			assert.Equal(t, "ABCD1234", m.Code)
			assert.Equal(t, "$", m.Currency)
			assert.Len(t, m.Items, 1)

			return nil
		})
	repo.EXPECT().UpdateMenu(gomock.Any(), gomock.Any()).Return(menu.ErrNotFound)

	svc := menu.NewService(repo)
	params := menu.Params{Currency: "$", Items: []menu.ItemParams{{Name: "Fries", Price: 3}}}

	got, err := svc.Update(context.Background(), "abcd1234", params)
	require.NoError(t, err)
	assert.Equal(t, "Fries", got.Items[0].Name)

	_, err = svc.Update(context.Background(), "abcd1234", params)
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := menu.NewMockRepository(ctrl)
	repo.EXPECT().DeleteMenu(gomock.Any(), "ABCD1234").Return(nil)

	assert.NoError(t, menu.NewService(repo).Delete(context.Background(), " abcd1234"))
}
