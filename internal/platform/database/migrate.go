package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
)

// Migrate applies every .sql file in the given filesystem in lexical order.
// Statements use IF NOT EXISTS guards, so re-running on startup is safe.
func Migrate(ctx context.Context, db *sql.DB, fsys embed.FS) error {
	entries, err := fsys.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		contents, err := fsys.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
