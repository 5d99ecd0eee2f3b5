package postgres

import (
	"fmt"
	"strings"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/goccy/go-json"
)

// buildWhere транслирует условия в SQL над JSONB.
// Отсутствующее поле сравнивается как JSON null.
func buildWhere(conds []docstore.Condition) (string, []any, error) {
	if len(conds) == 0 {
		return "TRUE", nil, nil
	}

	clauses := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds)*2)

	for _, cond := range conds {
		var value any = cond.Value
		var clause string

		field := len(args) + 1
		param := field + 1

		switch cond.Op {
		case docstore.OpEqual:
			clause = fmt.Sprintf(`COALESCE(data -> $%d::text, 'null'::jsonb) = $%d::jsonb`, field, param)
		case docstore.OpIn:
			clause = fmt.Sprintf(`COALESCE(data -> $%d::text, 'null'::jsonb) IN (SELECT jsonb_array_elements($%d::jsonb))`, field, param)
		case docstore.OpArrayContains:
			clause = fmt.Sprintf(`COALESCE(data -> $%d::text, '[]'::jsonb) @> $%d::jsonb`, field, param)
			value = []any{cond.Value}
		default:
			return "", nil, fmt.Errorf("repository: %w: %q", docstore.ErrUnsupportedOperator, cond.Op)
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return "", nil, fmt.Errorf("repository: failed to encode value of %q: %w", cond.Field, err)
		}

		clauses = append(clauses, clause)
		args = append(args, cond.Field, string(raw))
	}

	return strings.Join(clauses, " AND "), args, nil
}
