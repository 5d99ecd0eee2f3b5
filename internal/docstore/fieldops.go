package docstore

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type opKind int

const (
	opIncrement opKind = iota + 1
	opArrayUnion
)

// FieldOp маркер операции над полем, разрешается при fetch-modify-write
type FieldOp struct {
	kind   opKind
	amount float64
	item   any
}

// Increment прибавляет amount к текущему числовому значению (отсутствующее поле = 0)
func Increment(amount float64) FieldOp {
	return FieldOp{kind: opIncrement, amount: amount}
}

// ArrayUnion добавляет item в массив, если такого элемента там еще нет
func ArrayUnion(item any) FieldOp {
	return FieldOp{kind: opArrayUnion, item: item}
}

func (op FieldOp) String() string {
	switch op.kind {
	case opIncrement:
		return fmt.Sprintf("increment(%v)", op.amount)
	case opArrayUnion:
		return fmt.Sprintf("arrayUnion(%v)", op.item)
	default:
		return "unknown"
	}
}

// needsFetch сообщает, требует ли обновление чтения текущей строки
func needsFetch(patch Fields) bool {
	for key, value := range patch {
		if strings.Contains(key, ".") {
			return true
		}
		if _, ok := value.(FieldOp); ok {
			return true
		}
	}
	return false
}

func hasFieldOps(data Fields) bool {
	for _, value := range data {
		if _, ok := value.(FieldOp); ok {
			return true
		}
	}
	return false
}

// applyUpdate применяет patch к current на месте.
// Ключи обрабатываются в лексикографическом порядке, чтобы результат не зависел от обхода map.
func applyUpdate(current Fields, patch Fields) error {
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := strings.Split(key, ".")
		for _, segment := range path {
			if segment == "" {
				return fmt.Errorf("docstore: %w: empty segment in %q", ErrInvalidField, key)
			}
		}

		parent := map[string]any(current)
		for _, segment := range path[:len(path)-1] {
			next, ok := asMap(parent[segment])
			if !ok {
				next = map[string]any{}
				parent[segment] = next
			}
			parent = next
		}

		leaf := path[len(path)-1]
		value, err := resolveValue(parent[leaf], patch[key])
		if err != nil {
			return fmt.Errorf("docstore: field %q: %w", key, err)
		}
		parent[leaf] = value
	}

	return nil
}

func resolveValue(current, value any) (any, error) {
	op, ok := value.(FieldOp)
	if !ok {
		return value, nil
	}

	switch op.kind {
	case opIncrement:
		base, _ := toFloat(current)
		return decimal.NewFromFloat(base).Add(decimal.NewFromFloat(op.amount)).InexactFloat64(), nil

	case opArrayUnion:
		item, err := normalize(op.item)
		if err != nil {
			return nil, err
		}
		existing, _ := current.([]any)
		for _, element := range existing {
			if reflect.DeepEqual(element, item) {
				return existing, nil
			}
		}
		merged := make([]any, 0, len(existing)+1)
		merged = append(merged, existing...)
		return append(merged, item), nil

	default:
		return nil, fmt.Errorf("unknown field operation %v", op)
	}
}

// normalize приводит значение к виду, в котором оно вернется из базы
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
