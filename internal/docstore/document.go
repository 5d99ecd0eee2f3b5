package docstore

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tiendc/go-deepcopy"
)

// Fields содержимое документа: JSON-объект верхнего уровня
type Fields map[string]any

// Document снимок документа коллекции
type Document struct {
	ID     string
	Exists bool
	data   Fields
}

func newDocument(row Row) (Document, error) {
	data := Fields{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return Document{}, fmt.Errorf("docstore: failed to decode document %q: %w", row.ID, err)
		}
	}
	return Document{ID: row.ID, Exists: true, data: data}, nil
}

func newDocuments(rows []Row) ([]Document, error) {
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := newDocument(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Data возвращает копию полей документа
func (d Document) Data() (Fields, error) {
	clone, err := cloneFields(d.data)
	if err == nil {
		return clone, nil
	}

	// deepcopy не справился с типом значения, копируем через JSON
	raw, err := marshalFields(d.data)
	if err != nil {
		return nil, err
	}
	clone = Fields{}
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, fmt.Errorf("docstore: failed to copy document %q: %w", d.ID, err)
	}
	return clone, nil
}

// DataTo декодирует документ в структуру; поле id заполняется ID документа
func (d Document) DataTo(v any) error {
	if !d.Exists {
		return fmt.Errorf("docstore: %w: %q", ErrNotFound, d.ID)
	}

	withID := make(Fields, len(d.data)+1)
	for k, val := range d.data {
		withID[k] = val
	}
	withID["id"] = d.ID

	raw, err := json.Marshal(withID)
	if err != nil {
		return fmt.Errorf("docstore: failed to encode document %q: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("docstore: failed to decode document %q into %T: %w", d.ID, v, err)
	}
	return nil
}

// Get возвращает значение поля, поддерживает путь через точку
func (d Document) Get(field string) any {
	var current any = map[string]any(d.data)
	for _, key := range strings.Split(field, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil
		}
		current = m[key]
	}
	return current
}

// Float возвращает числовое поле или 0
func (d Document) Float(field string) float64 {
	f, _ := toFloat(d.Get(field))
	return f
}

// String возвращает строковое поле или пустую строку
func (d Document) String(field string) string {
	s, _ := d.Get(field).(string)
	return s
}

// Encode превращает сущность в поля документа (ключ id не хранится в теле)
func Encode(v any) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: failed to encode %T: %w", v, err)
	}

	fields := Fields{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("docstore: %T is not an object: %w", v, err)
	}
	delete(fields, "id")

	return fields, nil
}

func cloneFields(src Fields) (Fields, error) {
	if src == nil {
		return Fields{}, nil
	}
	var dst Fields
	if err := deepcopy.Copy(&dst, src); err != nil {
		return nil, fmt.Errorf("docstore: failed to copy fields: %w", err)
	}
	return dst, nil
}

func marshalFields(fields Fields) ([]byte, error) {
	if fields == nil {
		fields = Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("docstore: failed to encode fields: %w", err)
	}
	return raw, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Fields:
		return m, true
	default:
		return nil, false
	}
}
