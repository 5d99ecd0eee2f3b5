package sqlite

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migrationParams struct {
	Table        string
	CreatedIndex string
}

// RunMigrations создает таблицы коллекций по шаблонам из migrations/
func RunMigrations(ctx context.Context, db *sqlx.DB, tables []string, logger *zap.Logger) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var upMigrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			upMigrations = append(upMigrations, entry.Name())
		}
	}
	sort.Strings(upMigrations)

	for _, name := range upMigrations {
		content, err := migrationsFS.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		tmpl, err := template.New(name).Parse(string(content))
		if err != nil {
			return fmt.Errorf("failed to parse migration %s: %w", name, err)
		}

		for _, table := range tables {
			var sql bytes.Buffer
			err := tmpl.Execute(&sql, migrationParams{
				Table:        quote(table),
				CreatedIndex: quote(table + "_created_idx"),
			})
			if err != nil {
				return fmt.Errorf("failed to render migration %s for %s: %w", name, table, err)
			}

			if _, err := db.ExecContext(ctx, sql.String()); err != nil {
				return fmt.Errorf("failed to run migration %s for %s: %w", name, table, err)
			}
		}
		logger.Debug("migration completed", zap.String("name", name), zap.Int("tables", len(tables)))
	}

	return nil
}
