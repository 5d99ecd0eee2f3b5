package docstore

import "errors"

// Ошибки хранилища документов
var (
	ErrNotFound            = errors.New("document not found")
	ErrAlreadyExists       = errors.New("document already exists")
	ErrUnsupportedOperator = errors.New("unsupported query operator")
	ErrUnknownCollection   = errors.New("unknown collection")
	ErrInvalidField        = errors.New("invalid field")
	ErrBatchCommitted      = errors.New("write batch already committed")
)
