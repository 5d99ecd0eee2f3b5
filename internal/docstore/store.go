package docstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode режим выполнения транзакций и пакетов записи
type Mode int

const (
	// ModeAtomic выполняет транзакции и пакеты в транзакции базы с блокировкой строк
	ModeAtomic Mode = iota
	// ModeCompat последовательные операции без отката, пакет пишется параллельно
	ModeCompat
)

func (m Mode) String() string {
	if m == ModeCompat {
		return "compat"
	}
	return "atomic"
}

// Store эмулирует API документного хранилища поверх реляционной базы
type Store struct {
	client   Client
	registry *Registry
	mode     Mode
	logger   *zap.Logger
}

// New создает Store
func New(client Client, registry *Registry, mode Mode, logger *zap.Logger) *Store {
	return &Store{
		client:   client,
		registry: registry,
		mode:     mode,
		logger:   logger,
	}
}

// Mode возвращает режим транзакций
func (s *Store) Mode() Mode {
	return s.mode
}

func (s *Store) accessor() accessor {
	if s.mode == ModeAtomic {
		return accessor{exec: s.client, registry: s.registry, lockRows: true, wrap: s.client.InTx}
	}
	return accessor{exec: s.client, registry: s.registry}
}

// GetAll возвращает все документы коллекции
func (s *Store) GetAll(ctx context.Context, c Collection) ([]Document, error) {
	return s.accessor().getAll(ctx, c)
}

// Get возвращает документ; Exists=false, если его нет
func (s *Store) Get(ctx context.Context, c Collection, id string) (Document, error) {
	return s.accessor().get(ctx, c, id, false)
}

// Query возвращает документы, удовлетворяющие всем условиям
func (s *Store) Query(ctx context.Context, c Collection, conds ...Condition) ([]Document, error) {
	return s.accessor().query(ctx, c, conds)
}

// Insert создает документ; пустой id заменяется случайным
func (s *Store) Insert(ctx context.Context, c Collection, data Fields, id string) (string, error) {
	return s.accessor().insert(ctx, c, data, id)
}

// Set создает или обновляет документ с заданным id
func (s *Store) Set(ctx context.Context, c Collection, id string, data Fields, merge bool) error {
	return s.accessor().set(ctx, c, id, data, merge)
}

// Update меняет поля документа, поддерживает пути через точку, Increment и ArrayUnion
func (s *Store) Update(ctx context.Context, c Collection, id string, patch Fields) error {
	return s.accessor().update(ctx, c, id, patch)
}

// Delete удаляет документ без проверки существования
func (s *Store) Delete(ctx context.Context, c Collection, id string) error {
	return s.accessor().delete(ctx, c, id)
}

// accessor выполняет операции поверх конкретного исполнителя (клиента или транзакции)
type accessor struct {
	exec     Executor
	registry *Registry
	// lockRows блокирует строку при чтении перед записью
	lockRows bool
	// wrap открывает транзакцию для fetch-modify-write; nil внутри транзакции и в compat режиме
	wrap func(ctx context.Context, fn func(Executor) error) error
}

func (a accessor) getAll(ctx context.Context, c Collection) ([]Document, error) {
	table, err := a.registry.Table(c)
	if err != nil {
		return nil, err
	}

	rows, err := a.exec.SelectAll(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("docstore: failed to get %s: %w", c, err)
	}

	return newDocuments(rows)
}

func (a accessor) get(ctx context.Context, c Collection, id string, forUpdate bool) (Document, error) {
	table, err := a.registry.Table(c)
	if err != nil {
		return Document{}, err
	}

	row, err := a.exec.SelectByID(ctx, table, id, forUpdate)
	if err != nil {
		return Document{}, fmt.Errorf("docstore: failed to get %s/%s: %w", c, id, err)
	}
	if row == nil {
		return Document{ID: id}, nil
	}

	return newDocument(*row)
}

func (a accessor) query(ctx context.Context, c Collection, conds []Condition) ([]Document, error) {
	table, err := a.registry.Table(c)
	if err != nil {
		return nil, err
	}

	normalized, err := validateConditions(conds)
	if err != nil {
		return nil, err
	}

	rows, err := a.exec.SelectWhere(ctx, table, normalized)
	if err != nil {
		return nil, fmt.Errorf("docstore: failed to query %s: %w", c, err)
	}

	return newDocuments(rows)
}

func (a accessor) insert(ctx context.Context, c Collection, data Fields, id string) (string, error) {
	table, err := a.registry.Table(c)
	if err != nil {
		return "", err
	}
	if hasFieldOps(data) {
		return "", fmt.Errorf("docstore: %w: field operations are only supported by update", ErrInvalidField)
	}

	if id == "" {
		id = uuid.NewString()
	}

	raw, err := marshalFields(data)
	if err != nil {
		return "", err
	}

	if err := a.exec.Insert(ctx, table, Row{ID: id, Data: raw}); err != nil {
		return "", fmt.Errorf("docstore: failed to insert %s/%s: %w", c, id, err)
	}

	return id, nil
}

func (a accessor) set(ctx context.Context, c Collection, id string, data Fields, merge bool) error {
	table, err := a.registry.Table(c)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("docstore: set %s: empty document id", c)
	}
	if hasFieldOps(data) {
		return fmt.Errorf("docstore: %w: field operations are only supported by update", ErrInvalidField)
	}

	raw, err := marshalFields(data)
	if err != nil {
		return err
	}

	// TODO: при merge=false документ должен заменяться целиком, сейчас обе ветки сливают поля
	_ = merge
	if err := a.exec.Upsert(ctx, table, id, raw); err != nil {
		return fmt.Errorf("docstore: failed to set %s/%s: %w", c, id, err)
	}

	return nil
}

func (a accessor) update(ctx context.Context, c Collection, id string, patch Fields) error {
	table, err := a.registry.Table(c)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	if !needsFetch(patch) {
		raw, err := marshalFields(patch)
		if err != nil {
			return err
		}
		if _, err := a.exec.Merge(ctx, table, id, raw); err != nil {
			return fmt.Errorf("docstore: failed to update %s/%s: %w", c, id, err)
		}
		return nil
	}

	fetchModifyWrite := func(exec Executor) error {
		row, err := exec.SelectByID(ctx, table, id, a.lockRows)
		if err != nil {
			return fmt.Errorf("docstore: failed to read %s/%s: %w", c, id, err)
		}
		if row == nil {
			return fmt.Errorf("docstore: %w: %s/%s", ErrNotFound, c, id)
		}

		doc, err := newDocument(*row)
		if err != nil {
			return err
		}
		if err := applyUpdate(doc.data, patch); err != nil {
			return err
		}

		raw, err := marshalFields(doc.data)
		if err != nil {
			return err
		}

		ok, err := exec.Replace(ctx, table, id, raw)
		if err != nil {
			return fmt.Errorf("docstore: failed to write %s/%s: %w", c, id, err)
		}
		if !ok {
			return fmt.Errorf("docstore: %w: %s/%s", ErrNotFound, c, id)
		}
		return nil
	}

	if a.wrap != nil {
		return a.wrap(ctx, fetchModifyWrite)
	}
	return fetchModifyWrite(a.exec)
}

func (a accessor) delete(ctx context.Context, c Collection, id string) error {
	table, err := a.registry.Table(c)
	if err != nil {
		return err
	}

	if err := a.exec.Delete(ctx, table, id); err != nil {
		return fmt.Errorf("docstore: failed to delete %s/%s: %w", c, id, err)
	}

	return nil
}
