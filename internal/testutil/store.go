// Package testutil поднимает хранилище на SQLite в памяти для интеграционных тестов
package testutil

import (
	"context"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/repository/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewStore создает Store со всеми коллекциями приложения
func NewStore(t testing.TB, mode docstore.Mode) *docstore.Store {
	t.Helper()

	registry, err := docstore.NewRegistry("", domain.AllCollections...)
	require.NoError(t, err)

	db, err := sqlite.Open(sqlite.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.RunMigrations(context.Background(), db, registry.Tables(), zap.NewNop()))
	return docstore.New(sqlite.NewClient(db), registry, mode, zap.NewNop())
}

// Put записывает документ как есть, в обход действий
func Put(t testing.TB, store *docstore.Store, c docstore.Collection, id string, fields docstore.Fields) {
	t.Helper()
	require.NoError(t, store.Set(context.Background(), c, id, fields, false))
}

// Fetch читает документ и проверяет, что он существует
func Fetch(t testing.TB, store *docstore.Store, c docstore.Collection, id string) docstore.Document {
	t.Helper()
	doc, err := store.Get(context.Background(), c, id)
	require.NoError(t, err)
	require.True(t, doc.Exists, "%s/%s does not exist", c, id)
	return doc
}
