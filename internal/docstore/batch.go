package docstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type batchOpKind int

const (
	batchSet batchOpKind = iota + 1
	batchUpdate
	batchDelete
)

type batchOp struct {
	kind       batchOpKind
	collection Collection
	id         string
	data       Fields
	merge      bool
}

// WriteBatch накапливает записи и выполняет их при Commit
type WriteBatch struct {
	store     *Store
	mu        sync.Mutex
	ops       []batchOp
	committed bool
	err       error
}

// Batch создает пустой пакет записи
func (s *Store) Batch() *WriteBatch {
	return &WriteBatch{store: s}
}

// Set ставит в очередь создание/обновление документа
func (b *WriteBatch) Set(c Collection, id string, data Fields, merge bool) *WriteBatch {
	return b.enqueue(batchOp{kind: batchSet, collection: c, id: id, data: data, merge: merge})
}

// Update ставит в очередь обновление полей
func (b *WriteBatch) Update(c Collection, id string, patch Fields) *WriteBatch {
	return b.enqueue(batchOp{kind: batchUpdate, collection: c, id: id, data: patch})
}

// Delete ставит в очередь удаление
func (b *WriteBatch) Delete(c Collection, id string) *WriteBatch {
	return b.enqueue(batchOp{kind: batchDelete, collection: c, id: id})
}

// Len количество операций в очереди
func (b *WriteBatch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

func (b *WriteBatch) enqueue(op batchOp) *WriteBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.committed || b.err != nil {
		return b
	}

	// Снимок данных на момент вызова: последующие изменения map вызывающим не попадут в запись
	if op.data != nil {
		plain := make(Fields, len(op.data))
		fieldOps := make(map[string]FieldOp)
		for key, value := range op.data {
			if fieldOp, ok := value.(FieldOp); ok {
				fieldOps[key] = fieldOp
				continue
			}
			plain[key] = value
		}

		normalized, err := normalize(plain)
		if err != nil {
			b.err = fmt.Errorf("docstore: batch %s/%s: %w", op.collection, op.id, err)
			return b
		}
		snapshot := Fields(normalized.(map[string]any))
		// FieldOp неизменяем, переносим как есть
		for key, fieldOp := range fieldOps {
			snapshot[key] = fieldOp
		}
		op.data = snapshot
	}

	b.ops = append(b.ops, op)
	return b
}

// Commit выполняет накопленные записи.
// ModeAtomic: одна транзакция, порядок очереди сохраняется.
// ModeCompat: записи выполняются параллельно, без порядка и без атомарности.
func (b *WriteBatch) Commit(ctx context.Context) error {
	b.mu.Lock()
	if b.committed {
		b.mu.Unlock()
		return ErrBatchCommitted
	}
	b.committed = true
	ops := b.ops
	enqueueErr := b.err
	b.mu.Unlock()

	if enqueueErr != nil {
		return enqueueErr
	}
	if len(ops) == 0 {
		return nil
	}

	s := b.store
	if s.mode == ModeAtomic {
		return s.client.InTx(ctx, func(exec Executor) error {
			acc := accessor{exec: exec, registry: s.registry, lockRows: true}
			for _, op := range ops {
				if err := op.apply(ctx, acc); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// ошибка одной записи не отменяет остальные
	acc := s.accessor()
	var g errgroup.Group
	for _, op := range ops {
		op := op
		g.Go(func() error {
			return op.apply(ctx, acc)
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("write batch partially failed", zap.Int("operations", len(ops)), zap.Error(err))
		return fmt.Errorf("docstore: batch commit: %w", err)
	}
	return nil
}

func (op batchOp) apply(ctx context.Context, acc accessor) error {
	switch op.kind {
	case batchSet:
		return acc.set(ctx, op.collection, op.id, op.data, op.merge)
	case batchUpdate:
		return acc.update(ctx, op.collection, op.id, op.data)
	case batchDelete:
		return acc.delete(ctx, op.collection, op.id)
	default:
		return fmt.Errorf("docstore: unknown batch operation %d", op.kind)
	}
}
