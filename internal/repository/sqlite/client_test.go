package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	db, err := Open(MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db, []string{"users", "orders"}, zap.NewNop()))
	return NewClient(db)
}

func ids(rows []docstore.Row) []string {
	result := make([]string, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ID)
	}
	return result
}

func TestClient_InsertAndSelect(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", docstore.Row{ID: "u1", Data: []byte(`{"name":"Ali"}`)}))

	t.Run("Select by id", func(t *testing.T) {
		row, err := client.SelectByID(ctx, "users", "u1", false)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.JSONEq(t, `{"name":"Ali"}`, string(row.Data))
	})

	t.Run("Missing row", func(t *testing.T) {
		row, err := client.SelectByID(ctx, "users", "nope", false)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("Duplicate id", func(t *testing.T) {
		err := client.Insert(ctx, "users", docstore.Row{ID: "u1", Data: []byte(`{}`)})
		assert.ErrorIs(t, err, docstore.ErrAlreadyExists)
	})
}

func TestClient_MergeAndUpsert(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, "users", docstore.Row{ID: "u1", Data: []byte(`{"name":"Ali","stats":{"a":1}}`)}))

	t.Run("Merge replaces top level fields only", func(t *testing.T) {
		ok, err := client.Merge(ctx, "users", "u1", []byte(`{"stats":{"b":2},"city":"Tripoli"}`))
		require.NoError(t, err)
		assert.True(t, ok)

		row, err := client.SelectByID(ctx, "users", "u1", false)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ali","stats":{"b":2},"city":"Tripoli"}`, string(row.Data))
	})

	t.Run("Merge on missing row", func(t *testing.T) {
		ok, err := client.Merge(ctx, "users", "ghost", []byte(`{"a":1}`))
		require.NoError(t, err)
		assert.False(t, ok)

		row, err := client.SelectByID(ctx, "users", "ghost", false)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("Upsert creates then merges", func(t *testing.T) {
		require.NoError(t, client.Upsert(ctx, "users", "u2", []byte(`{"a":1}`)))
		require.NoError(t, client.Upsert(ctx, "users", "u2", []byte(`{"b":2}`)))

		row, err := client.SelectByID(ctx, "users", "u2", false)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":1,"b":2}`, string(row.Data))
	})
}

func TestClient_SelectWhere(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	fixtures := []docstore.Row{
		{ID: "o1", Data: []byte(`{"userId":"u1","status":"active","total":5,"paid":true,"tags":["a","b"]}`)},
		{ID: "o2", Data: []byte(`{"userId":"u1","status":"cancelled","total":7.5,"paid":false,"tags":["b"]}`)},
		{ID: "o3", Data: []byte(`{"userId":"u2","status":"active","total":"5","parent":null,"tags":"a"}`)},
	}
	for _, row := range fixtures {
		require.NoError(t, client.Insert(ctx, "orders", row))
	}

	tests := []struct {
		name  string
		conds []docstore.Condition
		want  []string
	}{
		{
			name:  "No conditions",
			conds: nil,
			want:  []string{"o1", "o2", "o3"},
		},
		{
			name:  "String equality",
			conds: []docstore.Condition{docstore.Where("userId", docstore.OpEqual, "u1")},
			want:  []string{"o1", "o2"},
		},
		{
			name:  "Number does not match string",
			conds: []docstore.Condition{docstore.Where("total", docstore.OpEqual, 5)},
			want:  []string{"o1"},
		},
		{
			name:  "Bool equality",
			conds: []docstore.Condition{docstore.Where("paid", docstore.OpEqual, false)},
			want:  []string{"o2"},
		},
		{
			name:  "Null matches absent and null",
			conds: []docstore.Condition{docstore.Where("parent", docstore.OpEqual, nil)},
			want:  []string{"o1", "o2", "o3"},
		},
		{
			name:  "In",
			conds: []docstore.Condition{docstore.Where("status", docstore.OpIn, []any{"active", "pending"})},
			want:  []string{"o1", "o3"},
		},
		{
			name:  "Empty in matches nothing",
			conds: []docstore.Condition{docstore.Where("status", docstore.OpIn, []any{})},
			want:  []string{},
		},
		{
			name:  "Array contains ignores scalars",
			conds: []docstore.Condition{docstore.Where("tags", docstore.OpArrayContains, "a")},
			want:  []string{"o1"},
		},
		{
			name: "Conjunction",
			conds: []docstore.Condition{
				docstore.Where("userId", docstore.OpEqual, "u1"),
				docstore.Where("tags", docstore.OpArrayContains, "b"),
				docstore.Where("status", docstore.OpEqual, "active"),
			},
			want: []string{"o1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := client.SelectWhere(ctx, "orders", tt.conds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestClient_InTx(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	t.Run("Rollback discards writes", func(t *testing.T) {
		boom := errors.New("boom")
		err := client.InTx(ctx, func(exec docstore.Executor) error {
			if err := exec.Insert(ctx, "users", docstore.Row{ID: "tx1", Data: []byte(`{}`)}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		row, err := client.SelectByID(ctx, "users", "tx1", false)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("Commit keeps writes", func(t *testing.T) {
		err := client.InTx(ctx, func(exec docstore.Executor) error {
			return exec.Upsert(ctx, "users", "tx2", []byte(`{"a":1}`))
		})
		require.NoError(t, err)

		row, err := client.SelectByID(ctx, "users", "tx2", false)
		require.NoError(t, err)
		assert.NotNil(t, row)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, client.Ping(ctx))
	})
}
