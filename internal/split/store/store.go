package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/easysplit/internal/database"
	"github.com/MrJamesThe3rd/easysplit/internal/split"
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectSplitColumns = `
	id, code, name, menu_code, people, items, quantities, totals, draft,
	currency, service_charge, tip_percent, created_at, updated_at
`

// scanSplit reads a row in selectSplitColumns order. A JSON column that does not decode
// fails the whole row.
func scanSplit(s scanner) (*split.Split, error) {
	var (
		sp                                split.Split
		name, menuCode                    sql.NullString
		people, items, quantities, totals []byte
		draft                             []byte
		createdAt, updatedAt              int64
	)

	if err := s.Scan(
		&sp.ID, &sp.Code, &name, &menuCode, &people, &items, &quantities, &totals, &draft,
		&sp.Currency, &sp.ServiceCharge, &sp.TipPercent, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	sp.Name = name.String
	sp.MenuCode = menuCode.String
	sp.CreatedAt = time.UnixMilli(createdAt).UTC()
	sp.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	columns := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"people", people, &sp.People},
		{"items", items, &sp.Items},
		{"quantities", quantities, &sp.Quantities},
		{"totals", totals, &sp.Totals},
	}

	for _, c := range columns {
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return nil, fmt.Errorf("decoding %s of split %s: %w", c.name, sp.Code, err)
		}
	}

	if len(draft) > 0 && string(draft) != "null" {
		sp.Draft = &split.Draft{}
		if err := json.Unmarshal(draft, sp.Draft); err != nil {
			return nil, fmt.Errorf("decoding draft of split %s: %w", sp.Code, err)
		}
	}

	return &sp, nil
}

type encoded struct {
	people, items, quantities, totals string
	draft                             sql.NullString
}

func encode(sp *split.Split) (encoded, error) {
	var (
		out encoded
		err error
	)

	if out.people, err = marshal(sp.People); err != nil {
		return out, fmt.Errorf("encoding people: %w", err)
	}

	if out.items, err = marshal(sp.Items); err != nil {
		return out, fmt.Errorf("encoding items: %w", err)
	}

	if out.quantities, err = marshal(sp.Quantities); err != nil {
		return out, fmt.Errorf("encoding quantities: %w", err)
	}

	if out.totals, err = marshal(sp.Totals); err != nil {
		return out, fmt.Errorf("encoding totals: %w", err)
	}

	if sp.Draft != nil {
		d, err := marshal(sp.Draft)
		if err != nil {
			return out, fmt.Errorf("encoding draft: %w", err)
		}

		out.draft = sql.NullString{String: d, Valid: true}
	}

	return out, nil
}

// marshal encodes nil slices as [] so the NOT NULL columns always hold an array.
func marshal[T any](v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	if string(b) == "null" {
		return "[]", nil
	}

	return string(b), nil
}

func (s *Store) CodeTaken(ctx context.Context, code string) (bool, error) {
	return s.db.CodeTaken(ctx, code)
}

func (s *Store) MenuExists(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM menus WHERE code = ?)`), code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking menu: %w", err)
	}

	return exists, nil
}

func (s *Store) CreateSplit(ctx context.Context, sp *split.Split) error {
	enc, err := encode(sp)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	query := s.db.Rebind(`
		INSERT INTO splits (code, name, menu_code, people, items, quantities, totals, draft,
			currency, service_charge, tip_percent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err = s.db.QueryRowContext(ctx, query,
		sp.Code, nullString(sp.Name), nullString(sp.MenuCode),
		enc.people, enc.items, enc.quantities, enc.totals, enc.draft,
		sp.Currency, sp.ServiceCharge, sp.TipPercent, now.UnixMilli(), now.UnixMilli(),
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("creating split: %w", err)
	}

	sp.CreatedAt = now
	sp.UpdatedAt = now

	return nil
}

func (s *Store) GetSplit(ctx context.Context, code string) (*split.Split, error) {
	query := s.db.Rebind(`SELECT ` + selectSplitColumns + ` FROM splits WHERE code = ?`)

	sp, err := scanSplit(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, split.ErrNotFound
		}

		return nil, fmt.Errorf("getting split: %w", err)
	}

	return sp, nil
}

func (s *Store) UpdateSplit(ctx context.Context, sp *split.Split) error {
	enc, err := encode(sp)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	query := s.db.Rebind(`
		UPDATE splits SET
			name = ?, menu_code = ?, people = ?, items = ?, quantities = ?, totals = ?, draft = ?,
			currency = ?, service_charge = ?, tip_percent = ?, updated_at = ?
		WHERE code = ?
		RETURNING id, created_at`)

	var createdAt int64

	err = s.db.QueryRowContext(ctx, query,
		nullString(sp.Name), nullString(sp.MenuCode),
		enc.people, enc.items, enc.quantities, enc.totals, enc.draft,
		sp.Currency, sp.ServiceCharge, sp.TipPercent, now.UnixMilli(),
		sp.Code,
	).Scan(&sp.ID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return split.ErrNotFound
		}

		return fmt.Errorf("updating split: %w", err)
	}

	sp.CreatedAt = time.UnixMilli(createdAt).UTC()
	sp.UpdatedAt = now

	return nil
}

func (s *Store) ListSplitsByMenuCode(ctx context.Context, menuCode string) ([]*split.Split, error) {
	query := s.db.Rebind(`SELECT ` + selectSplitColumns + `
		FROM splits
		WHERE menu_code = ?
		ORDER BY created_at DESC, id DESC`)

	rows, err := s.db.QueryContext(ctx, query, menuCode)
	if err != nil {
		return nil, fmt.Errorf("listing splits: %w", err)
	}
	defer rows.Close()

	splits := []*split.Split{}

	for rows.Next() {
		sp, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning split: %w", err)
		}

		splits = append(splits, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating splits: %w", err)
	}

	return splits, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
