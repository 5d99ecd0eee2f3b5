package sqlite

import (
	"fmt"
	"strings"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/goccy/go-json"
)

func fieldPath(field string) string {
	return `$."` + field + `"`
}

// buildWhere транслирует условия в выражения над json_extract/json_each
func buildWhere(conds []docstore.Condition) (string, []any, error) {
	if len(conds) == 0 {
		return "1", nil, nil
	}

	clauses := make([]string, 0, len(conds))
	var args []any

	for _, cond := range conds {
		path := fieldPath(cond.Field)

		switch cond.Op {
		case docstore.OpEqual:
			clause, clauseArgs, err := equals(path, cond.Value)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, clauseArgs...)

		case docstore.OpIn:
			values, _ := cond.Value.([]any)
			if len(values) == 0 {
				clauses = append(clauses, "0")
				continue
			}
			alternatives := make([]string, 0, len(values))
			for _, value := range values {
				clause, clauseArgs, err := equals(path, value)
				if err != nil {
					return "", nil, err
				}
				alternatives = append(alternatives, clause)
				args = append(args, clauseArgs...)
			}
			clauses = append(clauses, "("+strings.Join(alternatives, " OR ")+")")

		case docstore.OpArrayContains:
			match, matchArgs, err := elementMatch(cond.Value)
			if err != nil {
				return "", nil, err
			}
			clauses = append(clauses, fmt.Sprintf(
				`(json_type(data, ?) = 'array' AND EXISTS (SELECT 1 FROM json_each(data, ?) WHERE %s))`, match))
			args = append(args, path, path)
			args = append(args, matchArgs...)

		default:
			return "", nil, fmt.Errorf("repository: %w: %q", docstore.ErrUnsupportedOperator, cond.Op)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// equals сравнивает поле документа со значением с учетом JSON типа
func equals(path string, value any) (string, []any, error) {
	scalar, err := jsonScalar(value)
	if err != nil {
		return "", nil, err
	}

	switch v := scalar.(type) {
	case nil:
		return `json_extract(data, ?) IS NULL`, []any{path}, nil
	case bool:
		return `json_type(data, ?) = ?`, []any{path, boolType(v)}, nil
	case string:
		return `(json_type(data, ?) = 'text' AND json_extract(data, ?) = ?)`, []any{path, path, v}, nil
	case float64:
		return `(json_type(data, ?) IN ('integer', 'real') AND json_extract(data, ?) = ?)`, []any{path, path, v}, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", nil, err
		}
		return `json_extract(data, ?) = json(?)`, []any{path, string(raw)}, nil
	}
}

// elementMatch условие на строку json_each
func elementMatch(value any) (string, []any, error) {
	scalar, err := jsonScalar(value)
	if err != nil {
		return "", nil, err
	}

	switch v := scalar.(type) {
	case nil:
		return `type = 'null'`, nil, nil
	case bool:
		return `type = ?`, []any{boolType(v)}, nil
	case string:
		return `type = 'text' AND value = ?`, []any{v}, nil
	case float64:
		return `type IN ('integer', 'real') AND value = ?`, []any{v}, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", nil, err
		}
		return `value = json(?)`, []any{string(raw)}, nil
	}
}

func boolType(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// jsonScalar приводит значение Go к типу, каким его видит JSON
func jsonScalar(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to encode condition value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("repository: failed to decode condition value: %w", err)
	}
	return out, nil
}
