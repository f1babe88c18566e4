package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/easysplit/internal/database"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
	"github.com/MrJamesThe3rd/easysplit/internal/split/store"
)

func newStore(t *testing.T) (*store.Store, *database.DB) {
	t.Helper()

	db, err := database.New("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))

	return store.New(db), db
}

func sample(code, menuCode string) *split.Split {
	return &split.Split{
		Code:     code,
		Name:     "Dinner",
		MenuCode: menuCode,
		People:   []split.Person{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}},
		Items:    []split.Item{{ID: 1, Name: "Pizza", Price: 30}},
		Quantities: []split.Quantity{
			{ItemID: 1, PersonID: "a", Quantity: 0.5},
			{ItemID: 1, PersonID: "b", Quantity: 0.5},
		},
		Totals: []split.PersonTotal{
			{Person: split.Person{ID: "a", Name: "Alice"}, Subtotal: 15, Total: 15},
			{Person: split.Person{ID: "b", Name: "Bob"}, Subtotal: 15, Total: 15},
		},
		Draft: &split.Draft{OrderItems: []split.OrderItem{
			{InstanceID: "i1", OriginalID: 1, Name: "Pizza", Price: 30, OwnerID: "a", AssignedTo: []string{"a", "b"}},
		}},
		Currency:      "£",
		ServiceCharge: 12.5,
		TipPercent:    0,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	sp := sample("SPLIT001", "")
	require.NoError(t, s.CreateSplit(ctx, sp))
	assert.NotZero(t, sp.ID)

	got, err := s.GetSplit(ctx, "SPLIT001")
	require.NoError(t, err)

	assert.Equal(t, sp.People, got.People)
	assert.Equal(t, sp.Items, got.Items)
	assert.Equal(t, sp.Quantities, got.Quantities)
	assert.Equal(t, sp.Totals, got.Totals)
	assert.Equal(t, sp.Draft, got.Draft)
	assert.Equal(t, 12.5, got.ServiceCharge)
	assert.Empty(t, got.MenuCode)
	assert.Equal(t, sp.CreatedAt, got.CreatedAt)
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.GetSplit(context.Background(), "NOPE0001")
	assert.ErrorIs(t, err, split.ErrNotFound)
}

func TestStore_UpdateLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.CreateSplit(ctx, sample("SPLIT001", "")))

	first := sample("SPLIT001", "")
	first.Name = "First editor"
	require.NoError(t, s.UpdateSplit(ctx, first))

	second := sample("SPLIT001", "")
	second.Name = "Second editor"
	second.Draft = nil
	second.People = second.People[:1]
	require.NoError(t, s.UpdateSplit(ctx, second))

	got, err := s.GetSplit(ctx, "SPLIT001")
	require.NoError(t, err)

	assert.Equal(t, "Second editor", got.Name)
	assert.Len(t, got.People, 1)
	assert.Nil(t, got.Draft)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
}

func TestStore_UpdateMissing(t *testing.T) {
	s, _ := newStore(t)

	err := s.UpdateSplit(context.Background(), sample("NOPE0001", ""))
	assert.ErrorIs(t, err, split.ErrNotFound)
}

func TestStore_ListByMenuCodeNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.CreateSplit(ctx, sample("OLDER001", "MENU0001")))
	require.NoError(t, s.CreateSplit(ctx, sample("OTHER001", "MENU0002")))
	require.NoError(t, s.CreateSplit(ctx, sample("NEWER001", "MENU0001")))

	got, err := s.ListSplitsByMenuCode(ctx, "MENU0001")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "NEWER001", got[0].Code)
	assert.Equal(t, "OLDER001", got[1].Code)

	none, err := s.ListSplitsByMenuCode(ctx, "MENU0003")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_MenuExists(t *testing.T) {
	ctx := context.Background()
	s, db := newStore(t)

	_, err := db.ExecContext(ctx,
		`INSERT INTO menus (code, currency, created_at, updated_at) VALUES ('MENU0001', '£', 1, 1)`)
	require.NoError(t, err)

	exists, err := s.MenuExists(ctx, "MENU0001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.MenuExists(ctx, "MENU0002")
	require.NoError(t, err)
	assert.False(t, exists)

	taken, err := s.CodeTaken(ctx, "MENU0001")
	require.NoError(t, err)
	assert.True(t, taken, "split codes must not collide with menu codes")
}

func TestStore_MalformedJSON(t *testing.T) {
	ctx := context.Background()
	s, db := newStore(t)

	_, err := db.ExecContext(ctx, `INSERT INTO splits
		(code, people, items, quantities, totals, currency, service_charge, tip_percent, created_at, updated_at)
		VALUES ('BROKEN01', '{not json', '[]', '[]', '[]', '£', 0, 0, 1, 1)`)
	require.NoError(t, err)

	_, err = s.GetSplit(ctx, "BROKEN01")
	require.Error(t, err)
	assert.NotErrorIs(t, err, split.ErrNotFound)
}
