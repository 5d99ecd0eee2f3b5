package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

type record struct {
	ID   string `db:"id"`
	Data string `db:"data"`
}

func (r record) row() docstore.Row {
	return docstore.Row{ID: r.ID, Data: []byte(r.Data)}
}

// Client хранит документы как JSON текст в SQLite.
// Слияние полей выполняется на стороне приложения внутри транзакции.
type Client struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	tx  *sqlx.Tx
}

// NewClient создает клиент поверх открытой базы
func NewClient(db *sqlx.DB) *Client {
	return &Client{db: db, ext: db}
}

var _ docstore.Client = (*Client)(nil)

func quote(name string) string {
	return `"` + name + `"`
}

// SelectAll возвращает все строки таблицы в порядке вставки
func (c *Client) SelectAll(ctx context.Context, table string) ([]docstore.Row, error) {
	var records []record
	err := sqlx.SelectContext(ctx, c.ext, &records,
		fmt.Sprintf(`SELECT id, data FROM %s ORDER BY rowid`, quote(table)))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select %s: %w", table, err)
	}
	return toRows(records), nil
}

// SelectByID возвращает строку или nil.
// Блокировка строк не нужна: соединение одно и транзакции идут по очереди.
func (c *Client) SelectByID(ctx context.Context, table, id string, _ bool) (*docstore.Row, error) {
	var rec record
	err := sqlx.GetContext(ctx, c.ext, &rec,
		fmt.Sprintf(`SELECT id, data FROM %s WHERE id = ?`, quote(table)), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to select %s/%s: %w", table, id, err)
	}

	row := rec.row()
	return &row, nil
}

// SelectWhere возвращает строки, удовлетворяющие всем условиям
func (c *Client) SelectWhere(ctx context.Context, table string, conds []docstore.Condition) ([]docstore.Row, error) {
	where, args, err := buildWhere(conds)
	if err != nil {
		return nil, err
	}

	var records []record
	err = sqlx.SelectContext(ctx, c.ext, &records,
		fmt.Sprintf(`SELECT id, data FROM %s WHERE %s ORDER BY rowid`, quote(table), where), args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query %s: %w", table, err)
	}
	return toRows(records), nil
}

// Insert добавляет строку; занятый ключ дает docstore.ErrAlreadyExists
func (c *Client) Insert(ctx context.Context, table string, row docstore.Row) error {
	return c.InTx(ctx, func(exec docstore.Executor) error {
		tc := exec.(*Client)

		existing, err := tc.SelectByID(ctx, table, row.ID, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s/%s", docstore.ErrAlreadyExists, table, row.ID)
		}

		_, err = tc.ext.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, quote(table)),
			row.ID, string(row.Data))
		if err != nil {
			return fmt.Errorf("repository: failed to insert %s/%s: %w", table, row.ID, err)
		}
		return nil
	})
}

// Merge сливает верхнеуровневые поля patch с документом
func (c *Client) Merge(ctx context.Context, table, id string, patch []byte) (bool, error) {
	merged := false
	err := c.InTx(ctx, func(exec docstore.Executor) error {
		tc := exec.(*Client)

		existing, err := tc.SelectByID(ctx, table, id, true)
		if err != nil || existing == nil {
			return err
		}

		data, err := mergeTopLevel(existing.Data, patch)
		if err != nil {
			return err
		}

		merged, err = tc.Replace(ctx, table, id, data)
		return err
	})
	return merged, err
}

// Replace перезаписывает документ целиком
func (c *Client) Replace(ctx context.Context, table, id string, data []byte) (bool, error) {
	res, err := c.ext.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, quote(table)),
		string(data), id)
	if err != nil {
		return false, fmt.Errorf("repository: failed to update %s/%s: %w", table, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("repository: failed to update %s/%s: %w", table, id, err)
	}
	return affected > 0, nil
}

// Upsert создает строку или сливает поля с существующей
func (c *Client) Upsert(ctx context.Context, table, id string, data []byte) error {
	return c.InTx(ctx, func(exec docstore.Executor) error {
		tc := exec.(*Client)

		merged, err := tc.Merge(ctx, table, id, data)
		if err != nil || merged {
			return err
		}
		return tc.Insert(ctx, table, docstore.Row{ID: id, Data: data})
	})
}

// Delete удаляет строку; отсутствие строки не ошибка
func (c *Client) Delete(ctx context.Context, table, id string) error {
	_, err := c.ext.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quote(table)), id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete %s/%s: %w", table, id, err)
	}
	return nil
}

// InTx выполняет fn в транзакции; вложенный вызов работает в текущей
func (c *Client) InTx(ctx context.Context, fn func(docstore.Executor) error) error {
	if c.tx != nil {
		return fn(c)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(&Client{db: c.db, ext: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}
	return nil
}

// Ping проверяет соединение с базой
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func toRows(records []record) []docstore.Row {
	rows := make([]docstore.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.row())
	}
	return rows
}

func mergeTopLevel(current, patch []byte) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("repository: stored document is not an object: %w", err)
		}
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, fmt.Errorf("repository: patch is not an object: %w", err)
	}
	for key, value := range fields {
		doc[key] = value
	}

	return json.Marshal(doc)
}
