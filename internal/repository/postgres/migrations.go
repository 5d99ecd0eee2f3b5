package postgres

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migrationParams struct {
	Table        string
	DataIndex    string
	CreatedIndex string
}

// RunMigrations создает таблицы коллекций.
// Каждый *.up.sql файл является шаблоном и выполняется для каждой таблицы в алфавитном порядке файлов.
func RunMigrations(ctx context.Context, db DBTX, tables []string, logger *zap.Logger) error {
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
				Table:        ident(table),
				DataIndex:    ident(table + "_data_idx"),
				CreatedIndex: ident(table + "_created_idx"),
			})
			if err != nil {
				return fmt.Errorf("failed to render migration %s for %s: %w", name, table, err)
			}

			logger.Info("running migration", zap.String("name", name), zap.String("table", table))
			if _, err := db.Exec(ctx, sql.String()); err != nil {
				return fmt.Errorf("failed to run migration %s for %s: %w", name, table, err)
			}
		}
		logger.Info("migration completed", zap.String("name", name))
	}

	return nil
}
