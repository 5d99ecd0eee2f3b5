package docstore

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
)

// Operator оператор условия запроса
type Operator string

const (
	OpEqual         Operator = "=="
	OpIn            Operator = "in"
	OpArrayContains Operator = "array-contains"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Condition условие фильтрации (field, operator, value).
// Для OpIn значение нормализуется в []any.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Where создает условие запроса
func Where(field string, op Operator, value any) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Row строка таблицы коллекции: ключ и JSON документа
type Row struct {
	ID   string
	Data []byte
}

// Executor набор реляционных операций, на которых построена эмуляция документов.
// Реализуется и клиентом, и открытой транзакцией.
type Executor interface {
	SelectAll(ctx context.Context, table string) ([]Row, error)
	// SelectByID возвращает nil без ошибки, если строки нет
	SelectByID(ctx context.Context, table, id string, forUpdate bool) (*Row, error)
	SelectWhere(ctx context.Context, table string, conds []Condition) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) error
	// Merge частично обновляет верхнеуровневые поля; false, если строки нет
	Merge(ctx context.Context, table, id string, patch []byte) (bool, error)
	// Replace полностью перезаписывает документ; false, если строки нет
	Replace(ctx context.Context, table, id string, data []byte) (bool, error)
	// Upsert создает строку или сливает поля с существующей
	Upsert(ctx context.Context, table, id string, data []byte) error
	Delete(ctx context.Context, table, id string) error
}

// Client реляционный клиент хранилища
type Client interface {
	Executor
	// InTx выполняет fn в транзакции базы; вложенный вызов переиспользует текущую
	InTx(ctx context.Context, fn func(Executor) error) error
	Ping(ctx context.Context) error
}

func validateConditions(conds []Condition) ([]Condition, error) {
	normalized := make([]Condition, 0, len(conds))

	for _, cond := range conds {
		if !fieldNamePattern.MatchString(cond.Field) {
			return nil, fmt.Errorf("docstore: %w: %q", ErrInvalidField, cond.Field)
		}

		switch cond.Op {
		case OpEqual, OpArrayContains:
			normalized = append(normalized, cond)
		case OpIn:
			values, err := toSlice(cond.Value)
			if err != nil {
				return nil, fmt.Errorf("docstore: field %q: %w", cond.Field, err)
			}
			normalized = append(normalized, Condition{Field: cond.Field, Op: OpIn, Value: values})
		default:
			return nil, fmt.Errorf("docstore: %w: %q", ErrUnsupportedOperator, cond.Op)
		}
	}

	return normalized, nil
}

func toSlice(value any) ([]any, error) {
	if values, ok := value.([]any); ok {
		return values, nil
	}

	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("operator %q requires a list value, got %T", OpIn, value)
	}

	values := make([]any, v.Len())
	for i := range values {
		values[i] = v.Index(i).Interface()
	}
	return values, nil
}
