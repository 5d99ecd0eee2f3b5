package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX общий интерфейс пула соединений и транзакции
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client хранит документы в JSONB колонке: одна таблица на коллекцию
type Client struct {
	db   DBTX
	inTx bool
}

// NewClient создает клиент поверх пула или соединения
func NewClient(db DBTX) *Client {
	return &Client{db: db}
}

var _ docstore.Client = (*Client)(nil)

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// SelectAll возвращает все строки таблицы в порядке создания
func (c *Client) SelectAll(ctx context.Context, table string) ([]docstore.Row, error) {
	rows, err := c.db.Query(ctx,
		fmt.Sprintf(`SELECT id, data FROM %s ORDER BY created_at, id`, ident(table)))
	if err != nil {
		return nil, translateError(err, table, "")
	}
	return collectRows(rows)
}

// SelectByID возвращает строку по ключу или nil
func (c *Client) SelectByID(ctx context.Context, table, id string, forUpdate bool) (*docstore.Row, error) {
	query := fmt.Sprintf(`SELECT id, data FROM %s WHERE id = $1`, ident(table))
	if forUpdate {
		query += ` FOR UPDATE`
	}

	row := docstore.Row{}
	err := c.db.QueryRow(ctx, query, id).Scan(&row.ID, &row.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError(err, table, id)
	}

	return &row, nil
}

// SelectWhere возвращает строки, удовлетворяющие всем условиям
func (c *Client) SelectWhere(ctx context.Context, table string, conds []docstore.Condition) ([]docstore.Row, error) {
	where, args, err := buildWhere(conds)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(ctx,
		fmt.Sprintf(`SELECT id, data FROM %s WHERE %s ORDER BY created_at, id`, ident(table), where),
		args...)
	if err != nil {
		return nil, translateError(err, table, "")
	}
	return collectRows(rows)
}

// Insert добавляет строку; занятый ключ дает docstore.ErrAlreadyExists
func (c *Client) Insert(ctx context.Context, table string, row docstore.Row) error {
	_, err := c.db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, data) VALUES ($1, $2::jsonb)`, ident(table)),
		row.ID, string(row.Data))
	if err != nil {
		return translateError(err, table, row.ID)
	}
	return nil
}

// Merge сливает верхнеуровневые поля оператором ||
func (c *Client) Merge(ctx context.Context, table, id string, patch []byte) (bool, error) {
	tag, err := c.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET data = data || $2::jsonb, updated_at = now() WHERE id = $1`, ident(table)),
		id, string(patch))
	if err != nil {
		return false, translateError(err, table, id)
	}
	return tag.RowsAffected() > 0, nil
}

// Replace перезаписывает документ целиком
func (c *Client) Replace(ctx context.Context, table, id string, data []byte) (bool, error) {
	tag, err := c.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET data = $2::jsonb, updated_at = now() WHERE id = $1`, ident(table)),
		id, string(data))
	if err != nil {
		return false, translateError(err, table, id)
	}
	return tag.RowsAffected() > 0, nil
}

// Upsert создает строку или сливает поля с существующей
func (c *Client) Upsert(ctx context.Context, table, id string, data []byte) error {
	t := ident(table)
	_, err := c.db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = %s.data || EXCLUDED.data, updated_at = now()`, t, t),
		id, string(data))
	if err != nil {
		return translateError(err, table, id)
	}
	return nil
}

// Delete удаляет строку; отсутствие строки не ошибка
func (c *Client) Delete(ctx context.Context, table, id string) error {
	_, err := c.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, ident(table)), id)
	if err != nil {
		return translateError(err, table, id)
	}
	return nil
}

// InTx выполняет fn в транзакции, при ошибке fn транзакция откатывается
func (c *Client) InTx(ctx context.Context, fn func(docstore.Executor) error) error {
	if c.inTx {
		return fn(c)
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(&Client{db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}

// Ping проверяет соединение с базой
func (c *Client) Ping(ctx context.Context) error {
	if p, ok := c.db.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func collectRows(rows pgx.Rows) ([]docstore.Row, error) {
	defer rows.Close()

	result := make([]docstore.Row, 0)
	for rows.Next() {
		var row docstore.Row
		if err := rows.Scan(&row.ID, &row.Data); err != nil {
			return nil, fmt.Errorf("repository: failed to scan document: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: rows iteration error: %w", err)
	}

	return result, nil
}
