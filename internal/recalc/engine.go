// Package recalc пересчитывает производные поля из исходных записей.
// Каждая функция идемпотентна: результат не зависит от предыдущих запусков и порядка вызовов.
package recalc

import (
	"context"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine реализует domain.Recalculator поверх хранилища документов
type Engine struct {
	store  *docstore.Store
	logger *zap.Logger
}

// NewEngine создает Engine
func NewEngine(store *docstore.Store, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

var _ domain.Recalculator = (*Engine)(nil)

func activeStatuses() []any {
	statuses := make([]any, 0, len(domain.ActiveStatuses))
	for _, status := range domain.ActiveStatuses {
		statuses = append(statuses, string(status))
	}
	return statuses
}

// UserStats пересчитывает debt и orderCount клиента.
// В долг входят активные заказы и неотмененные временные накладные клиента без parentInvoiceId.
func (e *Engine) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	user, err := e.store.Get(ctx, domain.CollectionUsers, userID)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("recalc: failed to load user %q: %w", userID, err)
	}
	if !user.Exists {
		return domain.UserStats{}, fmt.Errorf("recalc: %w: %q", domain.ErrUserNotFound, userID)
	}

	orders, err := e.store.Query(ctx, domain.CollectionOrders,
		docstore.Where("userId", docstore.OpEqual, userID),
		docstore.Where("status", docstore.OpIn, activeStatuses()),
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("recalc: failed to load orders of user %q: %w", userID, err)
	}

	debt := decimal.Zero
	for _, order := range orders {
		debt = debt.Add(decimal.NewFromFloat(order.Float("remainingAmount")))
	}

	tempOrders, err := e.store.Query(ctx, domain.CollectionTempOrders,
		docstore.Where("assignedUserId", docstore.OpEqual, userID),
		docstore.Where("parentInvoiceId", docstore.OpEqual, nil),
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("recalc: failed to load temp orders of user %q: %w", userID, err)
	}

	for _, temp := range tempOrders {
		if domain.OrderStatus(temp.String("status")) == domain.StatusCancelled {
			continue
		}
		debt = debt.Add(decimal.NewFromFloat(temp.Float("remainingAmount")))
	}

	stats := domain.UserStats{
		Debt:       debt.InexactFloat64(),
		OrderCount: len(orders),
	}

	err = e.store.Update(ctx, domain.CollectionUsers, userID, docstore.Fields{
		"debt":       stats.Debt,
		"orderCount": stats.OrderCount,
	})
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("recalc: failed to save stats of user %q: %w", userID, err)
	}

	e.logger.Debug("user stats recalculated",
		zap.String("user_id", userID),
		zap.Float64("debt", stats.Debt),
		zap.Int("order_count", stats.OrderCount),
	)

	return stats, nil
}

// CreditorDebt пересчитывает totalDebt кредитора как сумму его внешних долгов
func (e *Engine) CreditorDebt(ctx context.Context, creditorID string) (float64, error) {
	creditor, err := e.store.Get(ctx, domain.CollectionCreditors, creditorID)
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to load creditor %q: %w", creditorID, err)
	}
	if !creditor.Exists {
		return 0, fmt.Errorf("recalc: %w: %q", domain.ErrCreditorNotFound, creditorID)
	}

	debts, err := e.store.Query(ctx, domain.CollectionExternalDebts,
		docstore.Where("creditorId", docstore.OpEqual, creditorID))
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to load debts of creditor %q: %w", creditorID, err)
	}

	total := decimal.Zero
	for _, debt := range debts {
		total = total.Add(decimal.NewFromFloat(debt.Float("amount")))
	}
	totalDebt := total.InexactFloat64()

	err = e.store.Update(ctx, domain.CollectionCreditors, creditorID, docstore.Fields{"totalDebt": totalDebt})
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to save debt of creditor %q: %w", creditorID, err)
	}

	e.logger.Debug("creditor debt recalculated",
		zap.String("creditor_id", creditorID),
		zap.Float64("total_debt", totalDebt),
	)

	return totalDebt, nil
}

// RepresentativeAssignments пересчитывает assignedOrders по заказам с representativeId
func (e *Engine) RepresentativeAssignments(ctx context.Context, representativeID string) (int, error) {
	rep, err := e.store.Get(ctx, domain.CollectionRepresentatives, representativeID)
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to load representative %q: %w", representativeID, err)
	}
	if !rep.Exists {
		return 0, fmt.Errorf("recalc: %w: %q", domain.ErrRepresentativeNotFound, representativeID)
	}

	orders, err := e.store.Query(ctx, domain.CollectionOrders,
		docstore.Where("representativeId", docstore.OpEqual, representativeID))
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to load orders of representative %q: %w", representativeID, err)
	}

	count := len(orders)
	err = e.store.Update(ctx, domain.CollectionRepresentatives, representativeID, docstore.Fields{"assignedOrders": count})
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to save assignments of representative %q: %w", representativeID, err)
	}

	return count, nil
}

// OrderBalance пересчитывает remainingAmount заказа:
// цена продажи минус предоплата минус платежи, кроме записи о предоплате
func (e *Engine) OrderBalance(ctx context.Context, orderID string) (float64, error) {
	order, err := e.store.Get(ctx, domain.CollectionOrders, orderID)
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to load order %q: %w", orderID, err)
	}
	if !order.Exists {
		return 0, fmt.Errorf("recalc: %w: %q", domain.ErrOrderNotFound, orderID)
	}

	payments, err := e.store.Query(ctx, domain.CollectionTransactions,
		docstore.Where("orderId", docstore.OpEqual, orderID),
		docstore.Where("type", docstore.OpEqual, string(domain.TransactionPayment)),
	)
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to load payments of order %q: %w", orderID, err)
	}

	remaining := decimal.NewFromFloat(order.Float("sellingPriceLYD")).
		Sub(decimal.NewFromFloat(order.Float("downPaymentLYD")))
	for _, payment := range payments {
		if isDown, _ := payment.Get("isDownPayment").(bool); isDown {
			continue
		}
		remaining = remaining.Sub(decimal.NewFromFloat(payment.Float("amount")))
	}
	remainingAmount := remaining.InexactFloat64()

	err = e.store.Update(ctx, domain.CollectionOrders, orderID, docstore.Fields{"remainingAmount": remainingAmount})
	if err != nil {
		return 0, fmt.Errorf("recalc: failed to save balance of order %q: %w", orderID, err)
	}

	return remainingAmount, nil
}
