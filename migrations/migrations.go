// Package migrations embeds the Postgres schema and applies it in file-name
// order. Every statement is idempotent, so Apply is safe on each start.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Apply runs every embedded .sql file against db.
func Apply(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		script, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		log.Printf("Applied migration %s", name)
	}
	return nil
}
