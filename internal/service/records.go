package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordService простые записи без агрегатов: вклады, расходы, уведомления,
// ручные накладные и продажи со склада
type RecordService struct {
	base
}

// NewRecordService создает новый RecordService
func NewRecordService(deps Deps) *RecordService {
	return &RecordService{base: newBase(deps)}
}

func (s *RecordService) create(ctx context.Context, op string, c docstore.Collection, record any) (string, error) {
	fields, err := docstore.Encode(record)
	if err != nil {
		return "", s.fail(op, err)
	}
	id, err := s.store.Insert(ctx, c, fields, "")
	if err != nil {
		return "", s.fail(op, err)
	}
	return id, nil
}

// replace переписывает поля существующей записи; createdAt сохраняется
func (s *RecordService) replace(ctx context.Context, op string, c docstore.Collection, id string, record any) error {
	found, err := exists(ctx, s.store, c, id)
	if err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	if !found {
		return s.fail(op, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, c, id), zap.String("record_id", id))
	}

	fields, err := docstore.Encode(record)
	if err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	delete(fields, "createdAt")

	if err := s.store.Update(ctx, c, id, fields); err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	return nil
}

func (s *RecordService) remove(ctx context.Context, op string, c docstore.Collection, id string) error {
	found, err := exists(ctx, s.store, c, id)
	if err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	if !found {
		return s.fail(op, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, c, id), zap.String("record_id", id))
	}
	if err := s.store.Delete(ctx, c, id); err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	return nil
}

func listRecords[T any](ctx context.Context, s *RecordService, op string, c docstore.Collection, conds ...docstore.Condition) ([]T, error) {
	records, err := list[T](ctx, s.store, c, conds...)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return records, nil
}

// AddDeposit записывает вклад
func (s *RecordService) AddDeposit(ctx context.Context, deposit domain.Deposit) (*domain.Deposit, error) {
	const op = "records.add_deposit"

	if err := nonNegative(deposit.Amount); err != nil {
		return nil, s.fail(op, err)
	}
	deposit.CreatedAt = now()
	if deposit.Date.IsZero() {
		deposit.Date = deposit.CreatedAt
	}

	id, err := s.create(ctx, op, domain.CollectionDeposits, deposit)
	if err != nil {
		return nil, err
	}
	deposit.ID = id
	return &deposit, nil
}

// UpdateDeposit меняет вклад
func (s *RecordService) UpdateDeposit(ctx context.Context, id string, deposit domain.Deposit) (*domain.Deposit, error) {
	const op = "records.update_deposit"

	if err := nonNegative(deposit.Amount); err != nil {
		return nil, s.fail(op, err, zap.String("record_id", id))
	}
	if err := s.replace(ctx, op, domain.CollectionDeposits, id, deposit); err != nil {
		return nil, err
	}
	deposit.ID = id
	return &deposit, nil
}

// DeleteDeposit удаляет вклад
func (s *RecordService) DeleteDeposit(ctx context.Context, id string) error {
	return s.remove(ctx, "records.delete_deposit", domain.CollectionDeposits, id)
}

// GetDeposits возвращает все вклады
func (s *RecordService) GetDeposits(ctx context.Context) ([]domain.Deposit, error) {
	return listRecords[domain.Deposit](ctx, s, "records.list_deposits", domain.CollectionDeposits)
}

// AddExpense записывает расход
func (s *RecordService) AddExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	const op = "records.add_expense"

	if err := nonNegative(expense.Amount); err != nil {
		return nil, s.fail(op, err)
	}
	expense.CreatedAt = now()
	if expense.Date.IsZero() {
		expense.Date = expense.CreatedAt
	}

	id, err := s.create(ctx, op, domain.CollectionExpenses, expense)
	if err != nil {
		return nil, err
	}
	expense.ID = id
	return &expense, nil
}

// UpdateExpense меняет расход
func (s *RecordService) UpdateExpense(ctx context.Context, id string, expense domain.Expense) (*domain.Expense, error) {
	const op = "records.update_expense"

	if err := nonNegative(expense.Amount); err != nil {
		return nil, s.fail(op, err, zap.String("record_id", id))
	}
	if err := s.replace(ctx, op, domain.CollectionExpenses, id, expense); err != nil {
		return nil, err
	}
	expense.ID = id
	return &expense, nil
}

// DeleteExpense удаляет расход
func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	return s.remove(ctx, "records.delete_expense", domain.CollectionExpenses, id)
}

// GetExpenses возвращает все расходы
func (s *RecordService) GetExpenses(ctx context.Context) ([]domain.Expense, error) {
	return listRecords[domain.Expense](ctx, s, "records.list_expenses", domain.CollectionExpenses)
}

// AddNotification создает непрочитанное уведомление; пустой UserID означает рассылку всем
func (s *RecordService) AddNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error) {
	const op = "records.add_notification"

	if err := required(notification.Title); err != nil {
		return nil, s.fail(op, err)
	}
	notification.Read = false
	notification.CreatedAt = now()

	id, err := s.create(ctx, op, domain.CollectionNotifications, notification)
	if err != nil {
		return nil, err
	}
	notification.ID = id
	return &notification, nil
}

// MarkNotificationRead отмечает уведомление прочитанным
func (s *RecordService) MarkNotificationRead(ctx context.Context, id string) error {
	const op = "records.mark_notification_read"

	found, err := exists(ctx, s.store, domain.CollectionNotifications, id)
	if err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	if !found {
		return s.fail(op, fmt.Errorf("%w: notification %q", domain.ErrRecordNotFound, id), zap.String("record_id", id))
	}

	if err := s.store.Update(ctx, domain.CollectionNotifications, id, docstore.Fields{"read": true}); err != nil {
		return s.fail(op, err, zap.String("record_id", id))
	}
	return nil
}

// DeleteNotification удаляет уведомление
func (s *RecordService) DeleteNotification(ctx context.Context, id string) error {
	return s.remove(ctx, "records.delete_notification", domain.CollectionNotifications, id)
}

// GetNotifications возвращает уведомления клиента; пустой userID возвращает все
func (s *RecordService) GetNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	if userID == "" {
		return listRecords[domain.Notification](ctx, s, "records.list_notifications", domain.CollectionNotifications)
	}
	return listRecords[domain.Notification](ctx, s, "records.list_notifications", domain.CollectionNotifications,
		docstore.Where("userId", docstore.OpIn, []any{userID, nil}))
}

// AddShippingLabel создает ручную накладную; номер отслеживания генерируется, если не задан
func (s *RecordService) AddShippingLabel(ctx context.Context, label domain.ManualShippingLabel) (*domain.ManualShippingLabel, error) {
	const op = "records.add_shipping_label"

	if label.Weight < 0 {
		return nil, s.fail(op, domain.ErrNegativeWeight)
	}
	label.TrackingID = strings.TrimSpace(label.TrackingID)
	if label.TrackingID == "" {
		label.TrackingID = newTrackingID()
	}
	label.CreatedAt = now()

	id, err := s.create(ctx, op, domain.CollectionShippingLabels, label)
	if err != nil {
		return nil, err
	}
	label.ID = id
	return &label, nil
}

// UpdateShippingLabel меняет ручную накладную; пустой номер отслеживания сохраняет прежний
func (s *RecordService) UpdateShippingLabel(ctx context.Context, id string, label domain.ManualShippingLabel) (*domain.ManualShippingLabel, error) {
	const op = "records.update_shipping_label"

	if label.Weight < 0 {
		return nil, s.fail(op, domain.ErrNegativeWeight, zap.String("record_id", id))
	}

	current, err := load[domain.ManualShippingLabel](ctx, s.store, domain.CollectionShippingLabels, id, domain.ErrRecordNotFound)
	if err != nil {
		return nil, s.fail(op, err, zap.String("record_id", id))
	}
	if strings.TrimSpace(label.TrackingID) == "" {
		label.TrackingID = current.TrackingID
	}

	if err := s.replace(ctx, op, domain.CollectionShippingLabels, id, label); err != nil {
		return nil, err
	}
	label.ID = id
	label.CreatedAt = current.CreatedAt
	return &label, nil
}

// DeleteShippingLabel удаляет ручную накладную
func (s *RecordService) DeleteShippingLabel(ctx context.Context, id string) error {
	return s.remove(ctx, "records.delete_shipping_label", domain.CollectionShippingLabels, id)
}

// GetShippingLabels возвращает все ручные накладные
func (s *RecordService) GetShippingLabels(ctx context.Context) ([]domain.ManualShippingLabel, error) {
	return listRecords[domain.ManualShippingLabel](ctx, s, "records.list_shipping_labels", domain.CollectionShippingLabels)
}

func saleTotal(sale domain.InstantSale) float64 {
	return decimal.NewFromFloat(sale.Quantity).Mul(decimal.NewFromFloat(sale.UnitPrice)).InexactFloat64()
}

// AddInstantSale записывает продажу; итог считается как количество на цену
func (s *RecordService) AddInstantSale(ctx context.Context, sale domain.InstantSale) (*domain.InstantSale, error) {
	const op = "records.add_instant_sale"

	if err := nonNegative(sale.Quantity, sale.UnitPrice); err != nil {
		return nil, s.fail(op, err)
	}
	sale.Total = saleTotal(sale)
	sale.CreatedAt = now()

	id, err := s.create(ctx, op, domain.CollectionInstantSales, sale)
	if err != nil {
		return nil, err
	}
	sale.ID = id
	return &sale, nil
}

// UpdateInstantSale меняет продажу и пересчитывает итог
func (s *RecordService) UpdateInstantSale(ctx context.Context, id string, sale domain.InstantSale) (*domain.InstantSale, error) {
	const op = "records.update_instant_sale"

	if err := nonNegative(sale.Quantity, sale.UnitPrice); err != nil {
		return nil, s.fail(op, err, zap.String("record_id", id))
	}
	sale.Total = saleTotal(sale)

	if err := s.replace(ctx, op, domain.CollectionInstantSales, id, sale); err != nil {
		return nil, err
	}
	sale.ID = id
	return &sale, nil
}

// DeleteInstantSale удаляет продажу
func (s *RecordService) DeleteInstantSale(ctx context.Context, id string) error {
	return s.remove(ctx, "records.delete_instant_sale", domain.CollectionInstantSales, id)
}

// GetInstantSales возвращает все продажи
func (s *RecordService) GetInstantSales(ctx context.Context) ([]domain.InstantSale, error) {
	return listRecords[domain.InstantSale](ctx, s, "records.list_instant_sales", domain.CollectionInstantSales)
}
