package postgres

import (
	"errors"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/jackc/pgx/v5/pgconn"
)

// Коды ошибок PostgreSQL
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

// ErrMissingTable таблица коллекции не создана (миграции не выполнены)
var ErrMissingTable = errors.New("collection table does not exist")

// translateError приводит ошибки драйвера к ошибкам хранилища
func translateError(err error, table, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s/%s", docstore.ErrAlreadyExists, table, id)
		case codeUndefinedTable:
			return fmt.Errorf("%w: %s", ErrMissingTable, table)
		}
	}
	return err
}
