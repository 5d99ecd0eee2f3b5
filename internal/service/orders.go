package service

import (
	"context"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderInput данные нового заказа
type OrderInput struct {
	UserID           string             `json:"userId"`
	Description      string             `json:"description"`
	SellingPriceLYD  float64            `json:"sellingPriceLYD"`
	PurchasePriceUSD float64            `json:"purchasePriceUSD"`
	DownPaymentLYD   float64            `json:"downPaymentLYD"`
	TrackingID       string             `json:"trackingId"`
	Status           domain.OrderStatus `json:"status"`
	// SourceTempOrderID заполняется при конвертации временной накладной
	SourceTempOrderID string `json:"-"`
}

// OrderUpdate изменение заказа; nil поля не меняются
type OrderUpdate struct {
	CustomerName     *string             `json:"customerName,omitempty"`
	Description      *string             `json:"description,omitempty"`
	SellingPriceLYD  *float64            `json:"sellingPriceLYD,omitempty"`
	PurchasePriceUSD *float64            `json:"purchasePriceUSD,omitempty"`
	Status           *domain.OrderStatus `json:"status,omitempty"`
}

// OrderService заказы клиентов
type OrderService struct {
	base
}

// NewOrderService создает новый OrderService
func NewOrderService(deps Deps) *OrderService {
	return &OrderService{base: newBase(deps)}
}

func validateOrderInput(in OrderInput) error {
	if err := required(in.UserID); err != nil {
		return err
	}
	if err := nonNegative(in.SellingPriceLYD, in.PurchasePriceUSD, in.DownPaymentLYD); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status)
	}
	return nil
}

// createOrderTx создает заказ внутри транзакции: номер накладной из счетчика клиента,
// запись о заказе на полную цену и запись о предоплате, если она есть
func createOrderTx(ctx context.Context, tx *docstore.Tx, in OrderInput) (domain.Order, error) {
	user, err := load[domain.User](ctx, tx, domain.CollectionUsers, in.UserID, domain.ErrUserNotFound)
	if err != nil {
		return domain.Order{}, err
	}

	settings, _, err := readSettings(ctx, tx)
	if err != nil {
		return domain.Order{}, err
	}

	counter := user.OrderCounter + 1
	trackingID := in.TrackingID
	if trackingID == "" {
		trackingID = newTrackingID()
	}
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}

	createdAt := now()
	order := domain.Order{
		UserID:            user.ID,
		CustomerName:      user.Name,
		Description:       in.Description,
		SellingPriceLYD:   in.SellingPriceLYD,
		PurchasePriceUSD:  in.PurchasePriceUSD,
		DownPaymentLYD:    in.DownPaymentLYD,
		RemainingAmount:   decimal.NewFromFloat(in.SellingPriceLYD).Sub(decimal.NewFromFloat(in.DownPaymentLYD)).InexactFloat64(),
		Status:            status,
		ExchangeRate:      settings.ExchangeRate,
		InvoiceNumber:     fmt.Sprintf("%s-%02d", user.Username, counter),
		TrackingID:        trackingID,
		SourceTempOrderID: in.SourceTempOrderID,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}

	fields, err := docstore.Encode(order)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID, err = tx.Insert(ctx, domain.CollectionOrders, fields, "")
	if err != nil {
		return domain.Order{}, err
	}

	entries := []domain.Transaction{{
		Type:        domain.TransactionOrder,
		Amount:      order.SellingPriceLYD,
		OrderID:     order.ID,
		CustomerID:  user.ID,
		Description: fmt.Sprintf("Order %s", order.InvoiceNumber),
		CreatedAt:   createdAt,
	}}
	if order.DownPaymentLYD > 0 {
		entries = append(entries, domain.Transaction{
			Type:          domain.TransactionPayment,
			Amount:        order.DownPaymentLYD,
			OrderID:       order.ID,
			CustomerID:    user.ID,
			Description:   fmt.Sprintf("Down payment for %s", order.InvoiceNumber),
			IsDownPayment: true,
			CreatedAt:     createdAt,
		})
	}
	for _, entry := range entries {
		fields, err := docstore.Encode(entry)
		if err != nil {
			return domain.Order{}, err
		}
		if _, err := tx.Insert(ctx, domain.CollectionTransactions, fields, ""); err != nil {
			return domain.Order{}, err
		}
	}

	err = tx.Update(ctx, domain.CollectionUsers, user.ID, docstore.Fields{"orderCounter": docstore.Increment(1)})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// CreateOrder создает заказ и пересчитывает агрегаты клиента
func (s *OrderService) CreateOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	const op = "orders.create"

	if err := validateOrderInput(in); err != nil {
		return nil, s.fail(op, err, zap.String("user_id", in.UserID))
	}

	var order domain.Order
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		order, err = createOrderTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("user_id", in.UserID))
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("invoice", order.InvoiceNumber),
		zap.String("user_id", order.UserID),
	)

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// GetOrder возвращает заказ по ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := load[domain.Order](ctx, s.store, domain.CollectionOrders, id, domain.ErrOrderNotFound)
	if err != nil {
		return nil, s.fail("orders.get", err, zap.String("order_id", id))
	}
	return &order, nil
}

// GetOrders возвращает все заказы
func (s *OrderService) GetOrders(ctx context.Context) ([]domain.Order, error) {
	docs, err := s.store.GetAll(ctx, domain.CollectionOrders)
	if err != nil {
		return nil, s.fail("orders.list", err)
	}
	orders, err := decodeAll[domain.Order](docs)
	if err != nil {
		return nil, s.fail("orders.list", err)
	}
	return orders, nil
}

// GetOrdersByUser возвращает заказы клиента
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := list[domain.Order](ctx, s.store, domain.CollectionOrders,
		docstore.Where("userId", docstore.OpEqual, userID))
	if err != nil {
		return nil, s.fail("orders.list_by_user", err, zap.String("user_id", userID))
	}
	return orders, nil
}

// GetOrderByTrackingID ищет заказ по номеру отслеживания
func (s *OrderService) GetOrderByTrackingID(ctx context.Context, trackingID string) (*domain.Order, error) {
	const op = "orders.track"

	orders, err := list[domain.Order](ctx, s.store, domain.CollectionOrders,
		docstore.Where("trackingId", docstore.OpEqual, trackingID))
	if err != nil {
		return nil, s.fail(op, err, zap.String("tracking_id", trackingID))
	}
	if len(orders) == 0 {
		return nil, s.fail(op, fmt.Errorf("%w: tracking id %q", domain.ErrOrderNotFound, trackingID))
	}
	return &orders[0], nil
}

// UpdateOrder меняет поля заказа.
// Изменение цены продажи сдвигает remainingAmount на ту же разницу, оплаты остаются в силе.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, in OrderUpdate) (*domain.Order, error) {
	const op = "orders.update"

	if in.SellingPriceLYD != nil || in.PurchasePriceUSD != nil {
		var prices []float64
		for _, p := range []*float64{in.SellingPriceLYD, in.PurchasePriceUSD} {
			if p != nil {
				prices = append(prices, *p)
			}
		}
		if err := nonNegative(prices...); err != nil {
			return nil, s.fail(op, err, zap.String("order_id", id))
		}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *in.Status), zap.String("order_id", id))
	}

	var order domain.Order
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		if err != nil {
			return err
		}

		patch := docstore.Fields{"updatedAt": now()}
		if in.CustomerName != nil {
			patch["customerName"] = *in.CustomerName
		}
		if in.Description != nil {
			patch["description"] = *in.Description
		}
		if in.PurchasePriceUSD != nil {
			patch["purchasePriceUSD"] = *in.PurchasePriceUSD
		}
		if in.Status != nil {
			patch["status"] = string(*in.Status)
		}
		if in.SellingPriceLYD != nil {
			delta := decimal.NewFromFloat(*in.SellingPriceLYD).Sub(decimal.NewFromFloat(order.SellingPriceLYD))
			patch["sellingPriceLYD"] = *in.SellingPriceLYD
			patch["remainingAmount"] = docstore.Increment(delta.InexactFloat64())
		}

		if err := tx.Update(ctx, domain.CollectionOrders, id, patch); err != nil {
			return err
		}

		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("order_id", id))
	}

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// UpdateOrderStatus выставляет статус заказа
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return s.UpdateOrder(ctx, id, OrderUpdate{Status: &status})
}

// SetCustomerWeightDetails задает вес и цену за кило.
// Цена продажи и остаток меняются на разницу между новой и прежней стоимостью веса.
func (s *OrderService) SetCustomerWeightDetails(ctx context.Context, id string, weight, pricePerKilo float64) (*domain.Order, error) {
	const op = "orders.set_weight"

	if weight < 0 {
		return nil, s.fail(op, domain.ErrNegativeWeight, zap.String("order_id", id))
	}
	if err := nonNegative(pricePerKilo); err != nil {
		return nil, s.fail(op, err, zap.String("order_id", id))
	}

	var order domain.Order
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		if err != nil {
			return err
		}

		cost := decimal.NewFromFloat(weight).Mul(decimal.NewFromFloat(pricePerKilo))
		delta := cost.Sub(decimal.NewFromFloat(order.CustomerWeightCost)).InexactFloat64()

		err = tx.Update(ctx, domain.CollectionOrders, id, docstore.Fields{
			"weight":             weight,
			"pricePerKilo":       pricePerKilo,
			"customerWeightCost": cost.InexactFloat64(),
			"sellingPriceLYD":    docstore.Increment(delta),
			"remainingAmount":    docstore.Increment(delta),
			"updatedAt":          now(),
		})
		if err != nil {
			return err
		}

		if delta != 0 {
			entry := domain.Transaction{
				Type:        domain.TransactionOrder,
				Amount:      delta,
				OrderID:     id,
				CustomerID:  order.UserID,
				Description: fmt.Sprintf("Weight cost %s: %v kg x %v", order.InvoiceNumber, weight, pricePerKilo),
				CreatedAt:   now(),
			}
			fields, err := docstore.Encode(entry)
			if err != nil {
				return err
			}
			if _, err := tx.Insert(ctx, domain.CollectionTransactions, fields, ""); err != nil {
				return err
			}
		}

		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("order_id", id))
	}

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// AddCustomerShippingCost задает стоимость доставки клиенту; применяется только разница с прежней
func (s *OrderService) AddCustomerShippingCost(ctx context.Context, id string, cost float64) (*domain.Order, error) {
	const op = "orders.set_shipping"

	if err := nonNegative(cost); err != nil {
		return nil, s.fail(op, err, zap.String("order_id", id))
	}

	var order domain.Order
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		if err != nil {
			return err
		}

		delta := decimal.NewFromFloat(cost).Sub(decimal.NewFromFloat(order.CustomerShippingCost)).InexactFloat64()
		err = tx.Update(ctx, domain.CollectionOrders, id, docstore.Fields{
			"customerShippingCost": cost,
			"sellingPriceLYD":      docstore.Increment(delta),
			"remainingAmount":      docstore.Increment(delta),
			"updatedAt":            now(),
		})
		if err != nil {
			return err
		}

		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("order_id", id))
	}

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// DeleteOrder удаляет заказ каскадно: счетчик представителя, записи журнала,
// ссылки временных накладных на этот заказ. Затем пересчитывает затронутых клиентов.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	const op = "orders.delete"

	var order domain.Order
	affected := []domain.StaleAggregate{}
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		order, err = load[domain.Order](ctx, tx, domain.CollectionOrders, id, domain.ErrOrderNotFound)
		if err != nil {
			return err
		}

		if order.RepresentativeID != nil {
			found, err := exists(ctx, tx, domain.CollectionRepresentatives, *order.RepresentativeID)
			if err != nil {
				return err
			}
			if found {
				err = tx.Update(ctx, domain.CollectionRepresentatives, *order.RepresentativeID,
					docstore.Fields{"assignedOrders": docstore.Increment(-1)})
				if err != nil {
					return err
				}
			}
		}

		entries, err := tx.Query(ctx, domain.CollectionTransactions, docstore.Where("orderId", docstore.OpEqual, id))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := tx.Delete(ctx, domain.CollectionTransactions, entry.ID); err != nil {
				return err
			}
		}

		temps, err := tx.Query(ctx, domain.CollectionTempOrders, docstore.Where("parentInvoiceId", docstore.OpEqual, id))
		if err != nil {
			return err
		}
		for _, temp := range temps {
			if err := tx.Update(ctx, domain.CollectionTempOrders, temp.ID, docstore.Fields{"parentInvoiceId": nil}); err != nil {
				return err
			}
			affected = append(affected, userAggregate(temp.String("assignedUserId")))
		}

		return tx.Delete(ctx, domain.CollectionOrders, id)
	})
	if err != nil {
		return s.fail(op, err, zap.String("order_id", id))
	}

	s.logger.Info("order deleted", zap.String("order_id", id), zap.String("user_id", order.UserID))

	return s.refresh(ctx, op, append(affected, userAggregate(order.UserID))...)
}

// RecalculateOrderBalance заново выводит remainingAmount из цены и платежей
func (s *OrderService) RecalculateOrderBalance(ctx context.Context, id string) (float64, error) {
	remaining, err := s.recalc.OrderBalance(ctx, id)
	if err != nil {
		return 0, s.fail("orders.recalculate", err, zap.String("order_id", id))
	}
	return remaining, s.refresh(ctx, "orders.recalculate", userAggregate(s.orderOwner(ctx, id)))
}

func (s *OrderService) orderOwner(ctx context.Context, id string) string {
	doc, err := s.store.Get(ctx, domain.CollectionOrders, id)
	if err != nil || !doc.Exists {
		return ""
	}
	return doc.String("userId")
}
