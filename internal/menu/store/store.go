package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/easysplit/internal/database"
	"github.com/MrJamesThe3rd/easysplit/internal/menu"
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// execer is satisfied by *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) CodeTaken(ctx context.Context, code string) (bool, error) {
	return s.db.CodeTaken(ctx, code)
}

func (s *Store) CreateMenu(ctx context.Context, m *menu.Menu) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	now := time.Now().UTC().Truncate(time.Millisecond)

	query := s.db.Rebind(`
		INSERT INTO menus (code, name, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	if err := dbTx.QueryRowContext(ctx, query,
		m.Code, nullString(m.Name), m.Currency, now.UnixMilli(), now.UnixMilli(),
	).Scan(&m.ID); err != nil {
		return fmt.Errorf("creating menu: %w", err)
	}

	if err := s.insertItems(ctx, dbTx, m.ID, m.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing menu: %w", err)
	}

	m.CreatedAt = now
	m.UpdatedAt = now

	return nil
}

func (s *Store) GetMenu(ctx context.Context, code string) (*menu.Menu, error) {
	query := s.db.Rebind(`
		SELECT id, code, name, currency, created_at, updated_at
		FROM menus
		WHERE code = ?`)

	var (
		m                  menu.Menu
		name               sql.NullString
		createdAt, updated int64
	)

	err := s.db.QueryRowContext(ctx, query, code).
		Scan(&m.ID, &m.Code, &name, &m.Currency, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, menu.ErrNotFound
		}

		return nil, fmt.Errorf("getting menu: %w", err)
	}

	m.Name = name.String
	m.CreatedAt = time.UnixMilli(createdAt).UTC()
	m.UpdatedAt = time.UnixMilli(updated).UTC()

	items, err := s.listItems(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	m.Items = items

	return &m, nil
}

// UpdateMenu replaces the menu's fields and items in one transaction, so readers never
// see a partial item list.
func (s *Store) UpdateMenu(ctx context.Context, m *menu.Menu) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	now := time.Now().UTC().Truncate(time.Millisecond)

	query := s.db.Rebind(`
		UPDATE menus SET name = ?, currency = ?, updated_at = ?
		WHERE code = ?
		RETURNING id, created_at`)

	var createdAt int64

	err = dbTx.QueryRowContext(ctx, query, nullString(m.Name), m.Currency, now.UnixMilli(), m.Code).
		Scan(&m.ID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return menu.ErrNotFound
		}

		return fmt.Errorf("updating menu: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, s.db.Rebind(`DELETE FROM menu_items WHERE menu_id = ?`), m.ID); err != nil {
		return fmt.Errorf("clearing menu items: %w", err)
	}

	if err := s.insertItems(ctx, dbTx, m.ID, m.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing menu update: %w", err)
	}

	m.CreatedAt = time.UnixMilli(createdAt).UTC()
	m.UpdatedAt = now

	return nil
}

func (s *Store) DeleteMenu(ctx context.Context, code string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	var id int64

	err = dbTx.QueryRowContext(ctx, s.db.Rebind(`SELECT id FROM menus WHERE code = ?`), code).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return menu.ErrNotFound
		}

		return fmt.Errorf("finding menu: %w", err)
	}

	// Items are removed explicitly; SQLite only cascades with foreign_keys enabled.
	if _, err := dbTx.ExecContext(ctx, s.db.Rebind(`DELETE FROM menu_items WHERE menu_id = ?`), id); err != nil {
		return fmt.Errorf("deleting menu items: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, s.db.Rebind(`DELETE FROM menus WHERE id = ?`), id); err != nil {
		return fmt.Errorf("deleting menu: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing menu delete: %w", err)
	}

	return nil
}

func (s *Store) insertItems(ctx context.Context, ex execer, menuID int64, items []menu.Item) error {
	query := s.db.Rebind(`INSERT INTO menu_items (menu_id, position, name, price) VALUES (?, ?, ?, ?)`)

	for i, it := range items {
		if _, err := ex.ExecContext(ctx, query, menuID, i, it.Name, it.Price); err != nil {
			return fmt.Errorf("inserting menu item %d: %w", i, err)
		}
	}

	return nil
}

func (s *Store) listItems(ctx context.Context, menuID int64) ([]menu.Item, error) {
	query := s.db.Rebind(`
		SELECT id, name, price
		FROM menu_items
		WHERE menu_id = ?
		ORDER BY position, id`)

	rows, err := s.db.QueryContext(ctx, query, menuID)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	defer rows.Close()

	items := []menu.Item{}

	for rows.Next() {
		var it menu.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu items: %w", err)
	}

	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
