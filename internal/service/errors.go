package service

import (
	"errors"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
)

// Kind категория ошибки действия
type Kind int

const (
	// KindStore отказ хранилища или непредвиденная ошибка
	KindStore Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	// KindStale запись выполнена, но пересчет агрегатов не удался.
	// Результат действия валиден, агрегаты поставлены в очередь на пересчет.
	KindStale
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindStale:
		return "stale"
	default:
		return "store"
	}
}

// Error ошибка действия: операция, категория и исходная причина
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf возвращает категорию ошибки; ошибки не из сервиса классифицируются по доменным ошибкам
func KindOf(err error) Kind {
	var actionErr *Error
	if errors.As(err, &actionErr) {
		return actionErr.Kind
	}
	return classify(err)
}

// IsStale сообщает, что запись прошла, но агрегаты еще не пересчитаны
func IsStale(err error) bool {
	return err != nil && KindOf(err) == KindStale
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, docstore.ErrNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, docstore.ErrInvalidField),
		errors.Is(err, docstore.ErrUnsupportedOperator):
		return KindValidation
	case errors.Is(err, domain.ErrConflict), errors.Is(err, docstore.ErrAlreadyExists):
		return KindConflict
	default:
		return KindStore
	}
}

func wrapError(op string, err error) *Error {
	var actionErr *Error
	if errors.As(err, &actionErr) {
		return actionErr
	}
	return &Error{Op: op, Kind: classify(err), Err: err}
}
