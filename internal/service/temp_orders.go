package service

import (
	"context"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TempOrderInput новая временная накладная.
// Если есть позиции, суммы считаются по ним; иначе берутся TotalAmount и RemainingAmount.
type TempOrderInput struct {
	InvoiceName     string             `json:"invoiceName"`
	SubOrders       []domain.SubOrder  `json:"subOrders"`
	TotalAmount     float64            `json:"totalAmount"`
	RemainingAmount float64            `json:"remainingAmount"`
	Status          domain.OrderStatus `json:"status"`
	AssignedUserID  string             `json:"assignedUserId"`
}

// TempOrderUpdate изменение накладной; nil поля не меняются
type TempOrderUpdate struct {
	InvoiceName    *string             `json:"invoiceName,omitempty"`
	Status         *domain.OrderStatus `json:"status,omitempty"`
	AssignedUserID *string             `json:"assignedUserId,omitempty"`
}

// SubOrderUpdate изменение позиции накладной; nil поля не меняются
type SubOrderUpdate struct {
	CustomerName       *string             `json:"customerName,omitempty"`
	Description        *string             `json:"description,omitempty"`
	TotalAmount        *float64            `json:"totalAmount,omitempty"`
	RemainingAmount    *float64            `json:"remainingAmount,omitempty"`
	RepresentativeID   *string             `json:"representativeId,omitempty"`
	RepresentativeName *string             `json:"representativeName,omitempty"`
	Status             *domain.OrderStatus `json:"status,omitempty"`
}

// TempOrderService временные накладные и их конвертация в заказы
type TempOrderService struct {
	base
}

// NewTempOrderService создает новый TempOrderService
func NewTempOrderService(deps Deps) *TempOrderService {
	return &TempOrderService{base: newBase(deps)}
}

// sumSubOrders пересчитывает суммы накладной по позициям
func sumSubOrders(temp *domain.TempOrder) {
	total, remaining := decimal.Zero, decimal.Zero
	for _, sub := range temp.SubOrders {
		total = total.Add(decimal.NewFromFloat(sub.TotalAmount))
		remaining = remaining.Add(decimal.NewFromFloat(sub.RemainingAmount))
	}
	temp.TotalAmount = total.InexactFloat64()
	temp.RemainingAmount = remaining.InexactFloat64()
}

func validateAmounts(total, remaining float64) error {
	if err := nonNegative(total, remaining); err != nil {
		return err
	}
	if remaining > total {
		return fmt.Errorf("%w: remaining amount exceeds total", domain.ErrInvalidAmount)
	}
	return nil
}

func prepareSubOrders(subs []domain.SubOrder) ([]domain.SubOrder, error) {
	prepared := make([]domain.SubOrder, 0, len(subs))
	for _, sub := range subs {
		if err := validateAmounts(sub.TotalAmount, sub.RemainingAmount); err != nil {
			return nil, err
		}
		if sub.Status != "" && !sub.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, sub.Status)
		}
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		if sub.Status == "" {
			sub.Status = domain.StatusPending
		}
		prepared = append(prepared, sub)
	}
	return prepared, nil
}

func tempOrderFields(temp domain.TempOrder) (docstore.Fields, error) {
	if temp.SubOrders == nil {
		temp.SubOrders = []domain.SubOrder{}
	}
	return docstore.Encode(temp)
}

// subOrdersPatch поля накладной, которые зависят от позиций
func subOrdersPatch(temp domain.TempOrder) (docstore.Fields, error) {
	return docstore.Encode(struct {
		SubOrders       []domain.SubOrder `json:"subOrders"`
		TotalAmount     float64           `json:"totalAmount"`
		RemainingAmount float64           `json:"remainingAmount"`
	}{temp.SubOrders, temp.TotalAmount, temp.RemainingAmount})
}

// convertTx создает основной заказ по накладной и связывает их через parentInvoiceId.
// Предоплата заказа равна уже оплаченной части накладной. Отмененная накладная не конвертируется.
func convertTx(ctx context.Context, tx *docstore.Tx, temp domain.TempOrder) (domain.Order, error) {
	if temp.ParentInvoiceID != nil {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrTempOrderConverted, temp.ID)
	}
	if temp.AssignedUserID == "" {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrTempOrderUnassigned, temp.ID)
	}

	if temp.Status == domain.StatusCancelled {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrTempOrderCancelled, temp.ID)
	}

	downPayment := decimal.NewFromFloat(temp.TotalAmount).Sub(decimal.NewFromFloat(temp.RemainingAmount))

	order, err := createOrderTx(ctx, tx, OrderInput{
		UserID:            temp.AssignedUserID,
		Description:       temp.InvoiceName,
		SellingPriceLYD:   temp.TotalAmount,
		DownPaymentLYD:    downPayment.InexactFloat64(),
		Status:            temp.Status,
		SourceTempOrderID: temp.ID,
	})
	if err != nil {
		return domain.Order{}, err
	}

	err = tx.Update(ctx, domain.CollectionTempOrders, temp.ID, docstore.Fields{"parentInvoiceId": order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// AddTempOrder создает накладную. Накладная с клиентом сразу конвертируется в заказ
// в той же транзакции, поэтому долг клиента учитывает ее один раз.
// Отмененная накладная остается неконвертированной и в долг не входит.
func (s *TempOrderService) AddTempOrder(ctx context.Context, in TempOrderInput) (*domain.TempOrder, error) {
	const op = "temp_orders.add"

	subs, err := prepareSubOrders(in.SubOrders)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, in.Status))
	}

	temp := domain.TempOrder{
		InvoiceName:     in.InvoiceName,
		SubOrders:       subs,
		TotalAmount:     in.TotalAmount,
		RemainingAmount: in.RemainingAmount,
		Status:          in.Status,
		AssignedUserID:  in.AssignedUserID,
		CreatedAt:       now(),
	}
	if len(subs) > 0 {
		sumSubOrders(&temp)
	}
	if err := validateAmounts(temp.TotalAmount, temp.RemainingAmount); err != nil {
		return nil, s.fail(op, err)
	}
	if temp.Status == "" {
		temp.Status = domain.StatusPending
	}

	err = s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		if temp.AssignedUserID != "" {
			user, err := load[domain.User](ctx, tx, domain.CollectionUsers, temp.AssignedUserID, domain.ErrUserNotFound)
			if err != nil {
				return err
			}
			temp.AssignedUserName = user.Name
		}

		fields, err := tempOrderFields(temp)
		if err != nil {
			return err
		}
		temp.ID, err = tx.Insert(ctx, domain.CollectionTempOrders, fields, "")
		if err != nil {
			return err
		}

		if temp.AssignedUserID == "" || temp.Status == domain.StatusCancelled {
			return nil
		}
		order, err := convertTx(ctx, tx, temp)
		if err != nil {
			return err
		}
		temp.ParentInvoiceID = &order.ID
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("user_id", in.AssignedUserID))
	}

	s.logger.Info("temp order created",
		zap.String("temp_order_id", temp.ID),
		zap.Bool("converted", temp.ParentInvoiceID != nil),
	)

	return &temp, s.refresh(ctx, op, userAggregate(temp.AssignedUserID))
}

// ConvertTempOrder конвертирует накладную с назначенным клиентом в основной заказ
func (s *TempOrderService) ConvertTempOrder(ctx context.Context, id string) (*domain.Order, error) {
	const op = "temp_orders.convert"

	var order domain.Order
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		temp, err := load[domain.TempOrder](ctx, tx, domain.CollectionTempOrders, id, domain.ErrTempOrderNotFound)
		if err != nil {
			return err
		}
		order, err = convertTx(ctx, tx, temp)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("temp_order_id", id))
	}

	return &order, s.refresh(ctx, op, userAggregate(order.UserID))
}

// UpdateTempOrder меняет название, статус или клиента накладной.
// Клиента сконвертированной накладной менять нельзя.
func (s *TempOrderService) UpdateTempOrder(ctx context.Context, id string, in TempOrderUpdate) (*domain.TempOrder, error) {
	const op = "temp_orders.update"

	if in.Status != nil && !in.Status.Valid() {
		return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *in.Status), zap.String("temp_order_id", id))
	}

	var previousUser string
	var temp domain.TempOrder
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		temp, err = load[domain.TempOrder](ctx, tx, domain.CollectionTempOrders, id, domain.ErrTempOrderNotFound)
		if err != nil {
			return err
		}
		previousUser = temp.AssignedUserID

		patch := docstore.Fields{}
		if in.InvoiceName != nil {
			temp.InvoiceName = *in.InvoiceName
			patch["invoiceName"] = temp.InvoiceName
		}
		if in.Status != nil {
			temp.Status = *in.Status
			patch["status"] = string(temp.Status)
		}
		if in.AssignedUserID != nil && *in.AssignedUserID != temp.AssignedUserID {
			if temp.ParentInvoiceID != nil {
				return fmt.Errorf("%w: %q", domain.ErrTempOrderConverted, id)
			}
			temp.AssignedUserID, temp.AssignedUserName = *in.AssignedUserID, ""
			if temp.AssignedUserID != "" {
				user, err := load[domain.User](ctx, tx, domain.CollectionUsers, temp.AssignedUserID, domain.ErrUserNotFound)
				if err != nil {
					return err
				}
				temp.AssignedUserName = user.Name
			}
			patch["assignedUserId"] = temp.AssignedUserID
			patch["assignedUserName"] = temp.AssignedUserName
		}

		return tx.Update(ctx, domain.CollectionTempOrders, id, patch)
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("temp_order_id", id))
	}

	return &temp, s.refresh(ctx, op, userAggregate(previousUser), userAggregate(temp.AssignedUserID))
}

// UpdateSubOrder меняет позицию накладной и пересчитывает суммы накладной по позициям
func (s *TempOrderService) UpdateSubOrder(ctx context.Context, tempID, subID string, in SubOrderUpdate) (*domain.TempOrder, error) {
	const op = "temp_orders.update_sub_order"
	fields := []zap.Field{zap.String("temp_order_id", tempID), zap.String("sub_order_id", subID)}

	if in.Status != nil && !in.Status.Valid() {
		return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *in.Status), fields...)
	}

	var temp domain.TempOrder
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		temp, err = load[domain.TempOrder](ctx, tx, domain.CollectionTempOrders, tempID, domain.ErrTempOrderNotFound)
		if err != nil {
			return err
		}

		index := -1
		for i := range temp.SubOrders {
			if temp.SubOrders[i].ID == subID {
				index = i
				break
			}
		}
		if index < 0 {
			return fmt.Errorf("%w: %q", domain.ErrSubOrderNotFound, subID)
		}

		sub := &temp.SubOrders[index]
		if in.CustomerName != nil {
			sub.CustomerName = *in.CustomerName
		}
		if in.Description != nil {
			sub.Description = *in.Description
		}
		if in.TotalAmount != nil {
			sub.TotalAmount = *in.TotalAmount
		}
		if in.RemainingAmount != nil {
			sub.RemainingAmount = *in.RemainingAmount
		}
		if in.RepresentativeID != nil {
			sub.RepresentativeID = *in.RepresentativeID
		}
		if in.RepresentativeName != nil {
			sub.RepresentativeName = *in.RepresentativeName
		}
		if in.Status != nil {
			sub.Status = *in.Status
		}
		if err := validateAmounts(sub.TotalAmount, sub.RemainingAmount); err != nil {
			return err
		}

		sumSubOrders(&temp)
		patch, err := subOrdersPatch(temp)
		if err != nil {
			return err
		}
		return tx.Update(ctx, domain.CollectionTempOrders, tempID, patch)
	})
	if err != nil {
		return nil, s.fail(op, err, fields...)
	}

	return &temp, s.refresh(ctx, op, userAggregate(temp.AssignedUserID))
}

// MergeTempOrders объединяет несконвертированные накладные в новую; исходные удаляются.
// Клиент сохраняется, только если он общий для всех исходных накладных.
func (s *TempOrderService) MergeTempOrders(ctx context.Context, ids []string, invoiceName string) (*domain.TempOrder, error) {
	const op = "temp_orders.merge"
	fields := []zap.Field{zap.Strings("temp_order_ids", ids)}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) < 2 {
		return nil, s.fail(op, domain.ErrNothingToMerge, fields...)
	}

	var merged domain.TempOrder
	var affected []domain.StaleAggregate
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		sources := make([]domain.TempOrder, 0, len(unique))
		for _, id := range unique {
			temp, err := load[domain.TempOrder](ctx, tx, domain.CollectionTempOrders, id, domain.ErrTempOrderNotFound)
			if err != nil {
				return err
			}
			if temp.ParentInvoiceID != nil {
				return fmt.Errorf("%w: %q", domain.ErrTempOrderConverted, id)
			}
			sources = append(sources, temp)
		}

		merged = domain.TempOrder{
			InvoiceName:      invoiceName,
			Status:           sources[0].Status,
			AssignedUserID:   sources[0].AssignedUserID,
			AssignedUserName: sources[0].AssignedUserName,
			CreatedAt:        now(),
		}
		if merged.InvoiceName == "" {
			merged.InvoiceName = sources[0].InvoiceName
		}

		total, remaining := decimal.Zero, decimal.Zero
		for _, temp := range sources {
			merged.SubOrders = append(merged.SubOrders, temp.SubOrders...)
			total = total.Add(decimal.NewFromFloat(temp.TotalAmount))
			remaining = remaining.Add(decimal.NewFromFloat(temp.RemainingAmount))
			if temp.AssignedUserID != merged.AssignedUserID {
				merged.AssignedUserID, merged.AssignedUserName = "", ""
			}
			affected = append(affected, userAggregate(temp.AssignedUserID))
		}
		merged.TotalAmount = total.InexactFloat64()
		merged.RemainingAmount = remaining.InexactFloat64()

		data, err := tempOrderFields(merged)
		if err != nil {
			return err
		}
		merged.ID, err = tx.Insert(ctx, domain.CollectionTempOrders, data, "")
		if err != nil {
			return err
		}

		for _, temp := range sources {
			if err := tx.Delete(ctx, domain.CollectionTempOrders, temp.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err, fields...)
	}

	s.logger.Info("temp orders merged", append(fields, zap.String("temp_order_id", merged.ID))...)

	return &merged, s.refresh(ctx, op, affected...)
}

// SplitTempOrder выносит указанные позиции в новую накладную с тем же клиентом и статусом
func (s *TempOrderService) SplitTempOrder(ctx context.Context, id string, subOrderIDs []string, invoiceName string) (*domain.TempOrder, error) {
	const op = "temp_orders.split"
	fields := []zap.Field{zap.String("temp_order_id", id), zap.Strings("sub_order_ids", subOrderIDs)}

	move := make(map[string]bool, len(subOrderIDs))
	for _, subID := range subOrderIDs {
		move[subID] = true
	}
	if len(move) == 0 {
		return nil, s.fail(op, domain.ErrInvalidSplit, fields...)
	}

	var split domain.TempOrder
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		source, err := load[domain.TempOrder](ctx, tx, domain.CollectionTempOrders, id, domain.ErrTempOrderNotFound)
		if err != nil {
			return err
		}
		if source.ParentInvoiceID != nil {
			return fmt.Errorf("%w: %q", domain.ErrTempOrderConverted, id)
		}

		var kept, moved []domain.SubOrder
		for _, sub := range source.SubOrders {
			if move[sub.ID] {
				moved = append(moved, sub)
			} else {
				kept = append(kept, sub)
			}
		}
		if len(moved) != len(move) {
			return fmt.Errorf("%w: in temp order %q", domain.ErrSubOrderNotFound, id)
		}
		if len(kept) == 0 {
			return domain.ErrInvalidSplit
		}

		source.SubOrders = kept
		sumSubOrders(&source)
		patch, err := subOrdersPatch(source)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, domain.CollectionTempOrders, id, patch); err != nil {
			return err
		}

		split = domain.TempOrder{
			InvoiceName:      invoiceName,
			SubOrders:        moved,
			Status:           source.Status,
			AssignedUserID:   source.AssignedUserID,
			AssignedUserName: source.AssignedUserName,
			CreatedAt:        now(),
		}
		if split.InvoiceName == "" {
			split.InvoiceName = source.InvoiceName
		}
		sumSubOrders(&split)

		data, err := tempOrderFields(split)
		if err != nil {
			return err
		}
		split.ID, err = tx.Insert(ctx, domain.CollectionTempOrders, data, "")
		return err
	})
	if err != nil {
		return nil, s.fail(op, err, fields...)
	}

	return &split, s.refresh(ctx, op, userAggregate(split.AssignedUserID))
}

// DeleteTempOrder удаляет накладную; созданный из нее заказ остается
func (s *TempOrderService) DeleteTempOrder(ctx context.Context, id string) error {
	const op = "temp_orders.delete"

	var temp domain.TempOrder
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		var err error
		temp, err = load[domain.TempOrder](ctx, tx, domain.CollectionTempOrders, id, domain.ErrTempOrderNotFound)
		if err != nil {
			return err
		}
		return tx.Delete(ctx, domain.CollectionTempOrders, id)
	})
	if err != nil {
		return s.fail(op, err, zap.String("temp_order_id", id))
	}

	return s.refresh(ctx, op, userAggregate(temp.AssignedUserID))
}

// GetTempOrders возвращает все накладные
func (s *TempOrderService) GetTempOrders(ctx context.Context) ([]domain.TempOrder, error) {
	docs, err := s.store.GetAll(ctx, domain.CollectionTempOrders)
	if err != nil {
		return nil, s.fail("temp_orders.list", err)
	}
	temps, err := decodeAll[domain.TempOrder](docs)
	if err != nil {
		return nil, s.fail("temp_orders.list", err)
	}
	return temps, nil
}

// GetTempOrder возвращает накладную по ID
func (s *TempOrderService) GetTempOrder(ctx context.Context, id string) (*domain.TempOrder, error) {
	temp, err := load[domain.TempOrder](ctx, s.store, domain.CollectionTempOrders, id, domain.ErrTempOrderNotFound)
	if err != nil {
		return nil, s.fail("temp_orders.get", err, zap.String("temp_order_id", id))
	}
	return &temp, nil
}
