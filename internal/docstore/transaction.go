package docstore

import (
	"context"

	"go.uber.org/zap"
)

// Tx операции внутри RunTransaction.
// Каждая операция выполняется сразу и видна следующему чтению.
type Tx struct {
	acc accessor
}

// RunTransaction выполняет fn.
// В ModeAtomic fn работает в транзакции базы и при ошибке все записи откатываются.
// В ModeCompat операции выполняются по очереди без отката: ошибка прерывает
// оставшиеся шаги, но уже примененные записи остаются.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	if s.mode == ModeAtomic {
		return s.client.InTx(ctx, func(exec Executor) error {
			return fn(&Tx{acc: accessor{exec: exec, registry: s.registry, lockRows: true}})
		})
	}

	err := fn(&Tx{acc: accessor{exec: s.client, registry: s.registry}})
	if err != nil {
		s.logger.Warn("transaction aborted, applied writes are kept", zap.Error(err))
	}
	return err
}

// Get читает документ; в ModeAtomic строка блокируется до конца транзакции
func (t *Tx) Get(ctx context.Context, c Collection, id string) (Document, error) {
	return t.acc.get(ctx, c, id, t.acc.lockRows)
}

// Query выполняет запрос внутри транзакции
func (t *Tx) Query(ctx context.Context, c Collection, conds ...Condition) ([]Document, error) {
	return t.acc.query(ctx, c, conds)
}

// Insert создает документ внутри транзакции
func (t *Tx) Insert(ctx context.Context, c Collection, data Fields, id string) (string, error) {
	return t.acc.insert(ctx, c, data, id)
}

// Set создает или обновляет документ внутри транзакции
func (t *Tx) Set(ctx context.Context, c Collection, id string, data Fields, merge bool) error {
	return t.acc.set(ctx, c, id, data, merge)
}

// Update меняет поля документа внутри транзакции
func (t *Tx) Update(ctx context.Context, c Collection, id string, patch Fields) error {
	return t.acc.update(ctx, c, id, patch)
}

// Delete удаляет документ внутри транзакции
func (t *Tx) Delete(ctx context.Context, c Collection, id string) error {
	return t.acc.delete(ctx, c, id)
}
