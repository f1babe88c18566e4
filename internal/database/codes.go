package database

import (
	"context"
	"fmt"
)

// CodeTaken reports whether code addresses an existing menu or split. Both namespaces
// share one link space, so a fresh code must be free in each.
func (d *DB) CodeTaken(ctx context.Context, code string) (bool, error) {
	const query = `
		SELECT
			EXISTS (SELECT 1 FROM menus WHERE code = ?) OR
			EXISTS (SELECT 1 FROM splits WHERE code = ?)`

	var taken bool
	if err := d.QueryRowContext(ctx, d.Rebind(query), code, code).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking code: %w", err)
	}

	return taken, nil
}
