package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionInput запись журнала от оператора
type TransactionInput struct {
	Type        domain.TransactionType `json:"type"`
	Amount      float64                `json:"amount"`
	OrderID     string                 `json:"orderId"`
	CustomerID  string                 `json:"customerId"`
	Description string                 `json:"description"`
}

// TransactionService журнал операций
type TransactionService struct {
	base
}

// NewTransactionService создает новый TransactionService
func NewTransactionService(deps Deps) *TransactionService {
	return &TransactionService{base: newBase(deps)}
}

func validateTransaction(in TransactionInput) error {
	switch in.Type {
	case domain.TransactionOrder, domain.TransactionPayment, domain.TransactionOther:
	default:
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, in.Type)
	}
	return nonNegative(in.Amount)
}

// paidAmount часть записи, которая уменьшает остаток заказа
func paidAmount(t domain.Transaction) decimal.Decimal {
	if t.Type != domain.TransactionPayment || t.OrderID == "" {
		return decimal.Zero
	}
	return decimal.NewFromFloat(t.Amount)
}

// applyPaymentDelta сдвигает остаток заказа на -(after - before).
// Для записи о предоплате downPaymentLYD меняется на ту же разницу.
func applyPaymentDelta(ctx context.Context, tx *docstore.Tx, before, after domain.Transaction) error {
	orderID := after.OrderID
	if orderID == "" {
		orderID = before.OrderID
	}
	delta := paidAmount(after).Sub(paidAmount(before))
	if orderID == "" || delta.IsZero() {
		return nil
	}

	patch := docstore.Fields{
		"remainingAmount": docstore.Increment(delta.Neg().InexactFloat64()),
		"updatedAt":       now(),
	}
	if before.IsDownPayment || after.IsDownPayment {
		patch["downPaymentLYD"] = docstore.Increment(delta.InexactFloat64())
	}

	found, err := exists(ctx, tx, domain.CollectionOrders, orderID)
	if err != nil || !found {
		return err
	}
	return tx.Update(ctx, domain.CollectionOrders, orderID, patch)
}

// AddTransaction добавляет запись; платеж по заказу уменьшает его остаток
func (s *TransactionService) AddTransaction(ctx context.Context, in TransactionInput) (*domain.Transaction, error) {
	const op = "transactions.add"

	if err := validateTransaction(in); err != nil {
		return nil, s.fail(op, err, zap.String("order_id", in.OrderID))
	}

	entry := domain.Transaction{
		Type:        in.Type,
		Amount:      in.Amount,
		OrderID:     in.OrderID,
		CustomerID:  in.CustomerID,
		Description: in.Description,
		CreatedAt:   now(),
	}

	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		if entry.OrderID != "" {
			order, err := load[domain.Order](ctx, tx, domain.CollectionOrders, entry.OrderID, domain.ErrOrderNotFound)
			if err != nil {
				return err
			}
			if entry.CustomerID == "" {
				entry.CustomerID = order.UserID
			}
		}

		fields, err := docstore.Encode(entry)
		if err != nil {
			return err
		}
		entry.ID, err = tx.Insert(ctx, domain.CollectionTransactions, fields, "")
		if err != nil {
			return err
		}

		return applyPaymentDelta(ctx, tx, domain.Transaction{}, entry)
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("order_id", in.OrderID))
	}

	return &entry, s.refresh(ctx, op, userAggregate(entry.CustomerID))
}

// UpdateTransaction меняет сумму, тип или описание записи.
// Остаток заказа сдвигается на разницу между прежним и новым платежом.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (*domain.Transaction, error) {
	const op = "transactions.update"

	if err := validateTransaction(in); err != nil {
		return nil, s.fail(op, err, zap.String("transaction_id", id))
	}

	var before, after domain.Transaction
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		before, err = load[domain.Transaction](ctx, tx, domain.CollectionTransactions, id, domain.ErrTransactionNotFound)
		if err != nil {
			return err
		}

		after = before
		after.Type = in.Type
		after.Amount = in.Amount
		after.Description = in.Description
		if after.IsDownPayment && after.Type != domain.TransactionPayment {
			after.IsDownPayment = false
		}

		err = tx.Update(ctx, domain.CollectionTransactions, id, docstore.Fields{
			"type":          string(after.Type),
			"amount":        after.Amount,
			"description":   after.Description,
			"isDownPayment": after.IsDownPayment,
		})
		if err != nil {
			return err
		}

		return applyPaymentDelta(ctx, tx, before, after)
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("transaction_id", id))
	}

	return &after, s.refresh(ctx, op, userAggregate(after.CustomerID))
}

// DeleteTransaction удаляет запись и возвращает платеж в остаток заказа
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	const op = "transactions.delete"

	var entry domain.Transaction
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		entry, err = load[domain.Transaction](ctx, tx, domain.CollectionTransactions, id, domain.ErrTransactionNotFound)
		if err != nil {
			return err
		}

		if err := applyPaymentDelta(ctx, tx, entry, domain.Transaction{OrderID: entry.OrderID, IsDownPayment: entry.IsDownPayment}); err != nil {
			return err
		}
		return tx.Delete(ctx, domain.CollectionTransactions, id)
	})
	if err != nil {
		return s.fail(op, err, zap.String("transaction_id", id))
	}

	return s.refresh(ctx, op, userAggregate(entry.CustomerID))
}

// GetTransactions возвращает весь журнал
func (s *TransactionService) GetTransactions(ctx context.Context) ([]domain.Transaction, error) {
	docs, err := s.store.GetAll(ctx, domain.CollectionTransactions)
	if err != nil {
		return nil, s.fail("transactions.list", err)
	}
	entries, err := decodeAll[domain.Transaction](docs)
	if err != nil {
		return nil, s.fail("transactions.list", err)
	}
	return entries, nil
}

// GetTransactionsByOrder возвращает записи заказа
func (s *TransactionService) GetTransactionsByOrder(ctx context.Context, orderID string) ([]domain.Transaction, error) {
	entries, err := list[domain.Transaction](ctx, s.store, domain.CollectionTransactions,
		docstore.Where("orderId", docstore.OpEqual, orderID))
	if err != nil {
		return nil, s.fail("transactions.list_by_order", err, zap.String("order_id", orderID))
	}
	return entries, nil
}

// GetTransactionsByUser возвращает записи по заказам клиента и записи с его customerId.
// Заказы клиента идут одним запросом in без ограничения на размер списка.
func (s *TransactionService) GetTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	const op = "transactions.list_by_user"

	orders, err := s.store.Query(ctx, domain.CollectionOrders, docstore.Where("userId", docstore.OpEqual, userID))
	if err != nil {
		return nil, s.fail(op, err, zap.String("user_id", userID))
	}

	var docs []docstore.Document
	if len(orders) > 0 {
		orderIDs := make([]any, 0, len(orders))
		for _, order := range orders {
			orderIDs = append(orderIDs, order.ID)
		}
		docs, err = s.store.Query(ctx, domain.CollectionTransactions, docstore.Where("orderId", docstore.OpIn, orderIDs))
		if err != nil {
			return nil, s.fail(op, err, zap.String("user_id", userID))
		}
	}

	direct, err := s.store.Query(ctx, domain.CollectionTransactions, docstore.Where("customerId", docstore.OpEqual, userID))
	if err != nil {
		return nil, s.fail(op, err, zap.String("user_id", userID))
	}

	seen := make(map[string]bool, len(docs)+len(direct))
	unique := make([]docstore.Document, 0, len(docs)+len(direct))
	for _, doc := range append(docs, direct...) {
		if seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true
		unique = append(unique, doc)
	}

	entries, err := decodeAll[domain.Transaction](unique)
	if err != nil {
		return nil, s.fail(op, err, zap.String("user_id", userID))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}
