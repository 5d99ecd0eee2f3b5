package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps общие зависимости сервисов
type Deps struct {
	Store  *docstore.Store
	Recalc domain.Recalculator
	// Repair может быть nil: тогда устаревшие агрегаты только логируются
	Repair domain.RepairQueue
	Logger *zap.Logger
}

type base struct {
	store  *docstore.Store
	recalc domain.Recalculator
	repair domain.RepairQueue
	logger *zap.Logger
}

func newBase(deps Deps) base {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{
		store:  deps.Store,
		recalc: deps.Recalc,
		repair: deps.Repair,
		logger: logger,
	}
}

// fail превращает ошибку в *Error и логирует ее на границе действия
func (b *base) fail(op string, err error, fields ...zap.Field) error {
	actionErr := wrapError(op, err)

	fields = append(fields,
		zap.String("op", op),
		zap.String("kind", actionErr.Kind.String()),
		zap.Error(err),
	)
	if actionErr.Kind == KindStore {
		b.logger.Error("action failed", fields...)
	} else {
		b.logger.Warn("action rejected", fields...)
	}

	return actionErr
}

// refresh пересчитывает агрегаты, которые могла затронуть запись.
// Отсутствующий владелец агрегата пропускается; остальные ошибки дают KindStale
// и отправляют агрегат в очередь фонового пересчета.
func (b *base) refresh(ctx context.Context, op string, targets ...domain.StaleAggregate) error {
	seen := make(map[domain.StaleAggregate]bool, len(targets))
	var failed []error

	for _, target := range targets {
		if target.ID == "" || seen[target] {
			continue
		}
		seen[target] = true

		err := recalculate(ctx, b.recalc, target)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			continue
		}

		queued := b.repair != nil && b.repair.Enqueue(target)
		b.logger.Warn("aggregate left stale",
			zap.String("op", op),
			zap.String("kind", string(target.Kind)),
			zap.String("id", target.ID),
			zap.Bool("queued", queued),
			zap.Error(err),
		)
		failed = append(failed, err)
	}

	if len(failed) == 0 {
		return nil
	}
	return &Error{Op: op, Kind: KindStale, Err: errors.Join(failed...)}
}

func recalculate(ctx context.Context, r domain.Recalculator, target domain.StaleAggregate) error {
	var err error
	switch target.Kind {
	case domain.AggregateUser:
		_, err = r.UserStats(ctx, target.ID)
	case domain.AggregateOrder:
		_, err = r.OrderBalance(ctx, target.ID)
	case domain.AggregateCreditor:
		_, err = r.CreditorDebt(ctx, target.ID)
	case domain.AggregateRepresentative:
		_, err = r.RepresentativeAssignments(ctx, target.ID)
	default:
		err = fmt.Errorf("unknown aggregate kind %q", target.Kind)
	}
	return err
}

func userAggregate(id string) domain.StaleAggregate {
	return domain.StaleAggregate{Kind: domain.AggregateUser, ID: id}
}

func creditorAggregate(id string) domain.StaleAggregate {
	return domain.StaleAggregate{Kind: domain.AggregateCreditor, ID: id}
}

// reader операции чтения, общие для Store и Tx
type reader interface {
	Get(ctx context.Context, c docstore.Collection, id string) (docstore.Document, error)
	Query(ctx context.Context, c docstore.Collection, conds ...docstore.Condition) ([]docstore.Document, error)
}

var (
	_ reader = (*docstore.Store)(nil)
	_ reader = (*docstore.Tx)(nil)
)

func decode[T any](doc docstore.Document) (T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return v, err
	}
	return v, nil
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	result := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// load читает и декодирует документ; отсутствие дает notFound
func load[T any](ctx context.Context, r reader, c docstore.Collection, id string, notFound error) (T, error) {
	var zero T
	if id == "" {
		return zero, fmt.Errorf("%w: empty id", notFound)
	}

	doc, err := r.Get(ctx, c, id)
	if err != nil {
		return zero, err
	}
	if !doc.Exists {
		return zero, fmt.Errorf("%w: %q", notFound, id)
	}
	return decode[T](doc)
}

func list[T any](ctx context.Context, r reader, c docstore.Collection, conds ...docstore.Condition) ([]T, error) {
	docs, err := r.Query(ctx, c, conds...)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

// exists проверяет наличие документа без декодирования
func exists(ctx context.Context, r reader, c docstore.Collection, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	doc, err := r.Get(ctx, c, id)
	if err != nil {
		return false, err
	}
	return doc.Exists, nil
}

func nonNegative(values ...float64) error {
	for _, v := range values {
		if v < 0 {
			return domain.ErrNegativeAmount
		}
	}
	return nil
}

func required(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return domain.ErrRequiredField
		}
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

// newTrackingID случайный номер отслеживания из заглавных букв и цифр
func newTrackingID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
