package docstore

import (
	"fmt"
	"regexp"
)

// Collection логическое имя коллекции документов
type Collection string

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Registry сопоставляет коллекции физическим таблицам.
// Создается один раз при старте и передается по ссылке.
type Registry struct {
	tables map[Collection]string
	order  []Collection
}

// NewRegistry создает реестр; prefix добавляется к имени каждой таблицы
func NewRegistry(prefix string, collections ...Collection) (*Registry, error) {
	r := &Registry{tables: make(map[Collection]string, len(collections))}

	for _, c := range collections {
		if _, dup := r.tables[c]; dup {
			return nil, fmt.Errorf("docstore: duplicate collection %q", c)
		}

		table := prefix + string(c)
		if !tableNamePattern.MatchString(table) {
			return nil, fmt.Errorf("docstore: invalid table name %q for collection %q", table, c)
		}

		r.tables[c] = table
		r.order = append(r.order, c)
	}

	return r, nil
}

// Table возвращает имя таблицы коллекции
func (r *Registry) Table(c Collection) (string, error) {
	table, ok := r.tables[c]
	if !ok {
		return "", fmt.Errorf("docstore: %w: %q", ErrUnknownCollection, c)
	}
	return table, nil
}

// Tables возвращает все таблицы в порядке регистрации
func (r *Registry) Tables() []string {
	tables := make([]string, 0, len(r.order))
	for _, c := range r.order {
		tables = append(tables, r.tables[c])
	}
	return tables
}
