package database

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS menus (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT,
		currency TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGSERIAL PRIMARY KEY,
		menu_id BIGINT NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_items_menu_id ON menu_items(menu_id, position)`,
	`CREATE TABLE IF NOT EXISTS splits (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT,
		menu_code TEXT,
		people JSONB NOT NULL,
		items JSONB NOT NULL,
		quantities JSONB NOT NULL,
		totals JSONB NOT NULL,
		draft JSONB,
		currency TEXT NOT NULL,
		service_charge DOUBLE PRECISION NOT NULL,
		tip_percent DOUBLE PRECISION NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_splits_menu_code ON splits(menu_code, created_at DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS menus (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT,
		currency TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		menu_id INTEGER NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		price REAL NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_menu_items_menu_id ON menu_items(menu_id, position)`,
	`CREATE TABLE IF NOT EXISTS splits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT,
		menu_code TEXT,
		people TEXT NOT NULL,
		items TEXT NOT NULL,
		quantities TEXT NOT NULL,
		totals TEXT NOT NULL,
		draft TEXT,
		currency TEXT NOT NULL,
		service_charge REAL NOT NULL,
		tip_percent REAL NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_splits_menu_code ON splits(menu_code, created_at DESC)`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func (d *DB) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if d.Dialect == SQLite {
		schema = sqliteSchema
	}

	for _, stmt := range schema {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}

	return nil
}
