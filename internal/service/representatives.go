package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"go.uber.org/zap"
)

// RepresentativeInput данные представителя
type RepresentativeInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RepresentativeService представители и назначение их на заказы
type RepresentativeService struct {
	base
}

// NewRepresentativeService создает новый RepresentativeService
func NewRepresentativeService(deps Deps) *RepresentativeService {
	return &RepresentativeService{base: newBase(deps)}
}

// AddRepresentative создает представителя без назначенных заказов
func (s *RepresentativeService) AddRepresentative(ctx context.Context, in RepresentativeInput) (*domain.Representative, error) {
	const op = "representatives.add"

	if err := required(in.Name); err != nil {
		return nil, s.fail(op, err)
	}

	rep := domain.Representative{
		Name:      in.Name,
		Phone:     in.Phone,
		CreatedAt: now(),
	}
	fields, err := docstore.Encode(rep)
	if err != nil {
		return nil, s.fail(op, err)
	}
	rep.ID, err = s.store.Insert(ctx, domain.CollectionRepresentatives, fields, "")
	if err != nil {
		return nil, s.fail(op, err)
	}

	return &rep, nil
}

// UpdateRepresentative меняет данные представителя и имя в его заказах
func (s *RepresentativeService) UpdateRepresentative(ctx context.Context, id string, in RepresentativeInput) (*domain.Representative, error) {
	const op = "representatives.update"

	if err := required(in.Name); err != nil {
		return nil, s.fail(op, err, zap.String("representative_id", id))
	}

	rep, err := load[domain.Representative](ctx, s.store, domain.CollectionRepresentatives, id, domain.ErrRepresentativeNotFound)
	if err != nil {
		return nil, s.fail(op, err, zap.String("representative_id", id))
	}

	orders, err := s.store.Query(ctx, domain.CollectionOrders, docstore.Where("representativeId", docstore.OpEqual, id))
	if err != nil {
		return nil, s.fail(op, err, zap.String("representative_id", id))
	}

	batch := s.store.Batch().
		Update(domain.CollectionRepresentatives, id, docstore.Fields{"name": in.Name, "phone": in.Phone})
	if in.Name != rep.Name {
		for _, order := range orders {
			batch.Update(domain.CollectionOrders, order.ID, docstore.Fields{"representativeName": in.Name})
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, s.fail(op, err, zap.String("representative_id", id))
	}

	rep.Name, rep.Phone = in.Name, in.Phone
	return &rep, nil
}

// DeleteRepresentative снимает представителя со всех заказов (статус ready) и удаляет его
func (s *RepresentativeService) DeleteRepresentative(ctx context.Context, id string) error {
	const op = "representatives.delete"

	var affected []domain.StaleAggregate
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		found, err := exists(ctx, tx, domain.CollectionRepresentatives, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q", domain.ErrRepresentativeNotFound, id)
		}

		orders, err := tx.Query(ctx, domain.CollectionOrders, docstore.Where("representativeId", docstore.OpEqual, id))
		if err != nil {
			return err
		}
		for _, order := range orders {
			err := tx.Update(ctx, domain.CollectionOrders, order.ID, unassignedFields())
			if err != nil {
				return err
			}
			affected = append(affected, userAggregate(order.String("userId")))
		}

		return tx.Delete(ctx, domain.CollectionRepresentatives, id)
	})
	if err != nil {
		return s.fail(op, err, zap.String("representative_id", id))
	}

	s.logger.Info("representative deleted", zap.String("representative_id", id), zap.Int("orders", len(affected)))

	return s.refresh(ctx, op, affected...)
}

// GetRepresentatives возвращает всех представителей
func (s *RepresentativeService) GetRepresentatives(ctx context.Context) ([]domain.Representative, error) {
	docs, err := s.store.GetAll(ctx, domain.CollectionRepresentatives)
	if err != nil {
		return nil, s.fail("representatives.list", err)
	}
	reps, err := decodeAll[domain.Representative](docs)
	if err != nil {
		return nil, s.fail("representatives.list", err)
	}
	return reps, nil
}

// GetRepresentativeOrders возвращает заказы, назначенные представителю
func (s *RepresentativeService) GetRepresentativeOrders(ctx context.Context, id string) ([]domain.Order, error) {
	orders, err := list[domain.Order](ctx, s.store, domain.CollectionOrders,
		docstore.Where("representativeId", docstore.OpEqual, id))
	if err != nil {
		return nil, s.fail("representatives.orders", err, zap.String("representative_id", id))
	}
	return orders, nil
}

func unassignedFields() docstore.Fields {
	return docstore.Fields{
		"representativeId":   nil,
		"representativeName": "",
		"status":             string(domain.StatusReady),
		"updatedAt":          now(),
	}
}

// assignmentDeltas изменения assignedOrders при переназначении заказов на repID (пустой repID снимает назначение)
func assignmentDeltas(orders []domain.Order, repID string) map[string]float64 {
	deltas := make(map[string]float64)
	for _, order := range orders {
		var current string
		if order.RepresentativeID != nil {
			current = *order.RepresentativeID
		}
		if current == repID {
			continue
		}
		if current != "" {
			deltas[current]--
		}
		if repID != "" {
			deltas[repID]++
		}
	}
	return deltas
}

// reassign переносит заказы на представителя repID (пустой repID снимает назначение) в одной транзакции.
// Заказы и представители читаются внутри нее, строки блокируются в порядке ID:
// сначала заказы, затем представители. Возвращает заказы до переназначения.
func (s *RepresentativeService) reassign(ctx context.Context, orderIDs []string, repID string) ([]domain.Order, *domain.Representative, error) {
	ids := uniqueSorted(orderIDs)

	var (
		orders []domain.Order
		rep    *domain.Representative
	)
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		orders = make([]domain.Order, 0, len(ids))
		for _, id := range ids {
			order, err := load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
			if err != nil {
				return err
			}
			orders = append(orders, order)
		}

		deltas := assignmentDeltas(orders, repID)
		repIDs := make([]string, 0, len(deltas)+1)
		for id := range deltas {
			repIDs = append(repIDs, id)
		}
		if _, ok := deltas[repID]; !ok && repID != "" {
			repIDs = append(repIDs, repID)
		}
		sort.Strings(repIDs)

		reps := make(map[string]domain.Representative, len(repIDs))
		for _, id := range repIDs {
			doc, err := tx.Get(ctx, domain.CollectionRepresentatives, id)
			if err != nil {
				return err
			}
			// прежний представитель мог быть удален
			if !doc.Exists {
				continue
			}
			r, err := decode[domain.Representative](doc)
			if err != nil {
				return err
			}
			reps[id] = r
		}

		if repID != "" {
			r, ok := reps[repID]
			if !ok {
				return fmt.Errorf("%w: %q", domain.ErrRepresentativeNotFound, repID)
			}
			rep = &r
		}

		for _, id := range repIDs {
			if _, ok := reps[id]; !ok || deltas[id] == 0 {
				continue
			}
			err := tx.Update(ctx, domain.CollectionRepresentatives, id, docstore.Fields{"assignedOrders": docstore.Increment(deltas[id])})
			if err != nil {
				return err
			}
		}

		for _, order := range orders {
			fields := unassignedFields()
			if rep != nil {
				fields["representativeId"] = rep.ID
				fields["representativeName"] = rep.Name
				fields["status"] = string(domain.StatusOutForDelivery)
			}
			if err := tx.Update(ctx, domain.CollectionOrders, order.ID, fields); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return orders, rep, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

func ownersOf(orders []domain.Order) []domain.StaleAggregate {
	targets := make([]domain.StaleAggregate, 0, len(orders))
	for _, order := range orders {
		targets = append(targets, userAggregate(order.UserID))
	}
	return targets
}

// AssignRepresentative назначает представителя на заказ: прежнему -1, новому +1, статус out_for_delivery
func (s *RepresentativeService) AssignRepresentative(ctx context.Context, orderID, representativeID string) (*domain.Order, error) {
	const op = "representatives.assign"
	fields := []zap.Field{zap.String("order_id", orderID), zap.String("representative_id", representativeID)}

	if representativeID == "" {
		return nil, s.fail(op, fmt.Errorf("%w: empty id", domain.ErrRepresentativeNotFound), fields...)
	}

	orders, rep, err := s.reassign(ctx, []string{orderID}, representativeID)
	if err != nil {
		return nil, s.fail(op, err, fields...)
	}

	order := orders[0]
	order.RepresentativeID = &rep.ID
	order.RepresentativeName = rep.Name
	order.Status = domain.StatusOutForDelivery

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// UnassignRepresentative снимает представителя с заказа, статус ready
func (s *RepresentativeService) UnassignRepresentative(ctx context.Context, orderID string) (*domain.Order, error) {
	const op = "representatives.unassign"

	orders, _, err := s.reassign(ctx, []string{orderID}, "")
	if err != nil {
		return nil, s.fail(op, err, zap.String("order_id", orderID))
	}

	order := orders[0]
	order.RepresentativeID = nil
	order.RepresentativeName = ""
	order.Status = domain.StatusReady

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// BulkAssignRepresentative назначает представителя на несколько заказов в одной транзакции
func (s *RepresentativeService) BulkAssignRepresentative(ctx context.Context, orderIDs []string, representativeID string) error {
	const op = "representatives.bulk_assign"
	fields := []zap.Field{zap.Strings("order_ids", orderIDs), zap.String("representative_id", representativeID)}

	if len(orderIDs) == 0 {
		return s.fail(op, fmt.Errorf("%w: no orders", domain.ErrRequiredField), fields...)
	}
	if representativeID == "" {
		return s.fail(op, fmt.Errorf("%w: empty id", domain.ErrRepresentativeNotFound), fields...)
	}

	orders, _, err := s.reassign(ctx, orderIDs, representativeID)
	if err != nil {
		return s.fail(op, err, fields...)
	}

	s.logger.Info("orders assigned", append(fields, zap.Int("count", len(orders)))...)

	return s.refresh(ctx, op, ownersOf(orders)...)
}

// RecordRepresentativePayment фиксирует оплату, полученную представителем при доставке:
// запись о платеже, остаток уменьшается на сумму, статус delivered с отметкой времени
func (s *RepresentativeService) RecordRepresentativePayment(ctx context.Context, orderID string, amount float64) (*domain.Order, error) {
	const op = "representatives.record_payment"

	if amount <= 0 {
		return nil, s.fail(op, domain.ErrInvalidAmount, zap.String("order_id", orderID))
	}

	var order domain.Order
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, orderID, domain.ErrOrderNotFound)
		if err != nil {
			return err
		}

		paidAt := now()
		entry := domain.Transaction{
			Type:        domain.TransactionPayment,
			Amount:      amount,
			OrderID:     orderID,
			CustomerID:  order.UserID,
			Description: fmt.Sprintf("Payment collected by %s for %s", order.RepresentativeName, order.InvoiceNumber),
			CreatedAt:   paidAt,
		}
		fields, err := docstore.Encode(entry)
		if err != nil {
			return err
		}
		if _, err := tx.Insert(ctx, domain.CollectionTransactions, fields, ""); err != nil {
			return err
		}

		err = tx.Update(ctx, domain.CollectionOrders, orderID, docstore.Fields{
			"remainingAmount": docstore.Increment(-amount),
			"status":          string(domain.StatusDelivered),
			"deliveredAt":     paidAt,
			"updatedAt":       paidAt,
		})
		if err != nil {
			return err
		}

		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, orderID, domain.ErrOrderNotFound)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("order_id", orderID))
	}

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// RecalculateRepresentativeAssignments пересчитывает assignedOrders по заказам
func (s *RepresentativeService) RecalculateRepresentativeAssignments(ctx context.Context, id string) (int, error) {
	count, err := s.recalc.RepresentativeAssignments(ctx, id)
	if err != nil {
		return 0, s.fail("representatives.recalculate", err, zap.String("representative_id", id))
	}
	return count, nil
}
