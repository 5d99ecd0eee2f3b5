package domain

import "context"

// AggregateKind тип сущности с производными полями
type AggregateKind string

const (
	AggregateUser           AggregateKind = "user"
	AggregateOrder          AggregateKind = "order"
	AggregateCreditor       AggregateKind = "creditor"
	AggregateRepresentative AggregateKind = "representative"
)

// StaleAggregate агрегат, пересчет которого не удался после записи
type StaleAggregate struct {
	Kind AggregateKind
	ID   string
}

// Recalculator пересчитывает производные поля из исходных записей
type Recalculator interface {
	UserStats(ctx context.Context, userID string) (UserStats, error)
	CreditorDebt(ctx context.Context, creditorID string) (float64, error)
	RepresentativeAssignments(ctx context.Context, representativeID string) (int, error)
	OrderBalance(ctx context.Context, orderID string) (float64, error)
}

// RepairQueue принимает устаревшие агрегаты для фонового пересчета
type RepairQueue interface {
	// Enqueue возвращает false, если очередь заполнена
	Enqueue(job StaleAggregate) bool
}

// AuthService выдает токены администратору и клиентам
type AuthService interface {
	// Login возвращает подписанный токен; неверная пара дает ErrInvalidCredentials
	Login(ctx context.Context, username, password string) (string, error)
}

// CustomerPortal данные личного кабинета клиента и публичного отслеживания
type CustomerPortal interface {
	Profile(ctx context.Context, userID string) (*User, error)
	Orders(ctx context.Context, userID string) ([]Order, error)
	Transactions(ctx context.Context, userID string) ([]Transaction, error)
	Track(ctx context.Context, trackingID string) (*Order, error)
}
