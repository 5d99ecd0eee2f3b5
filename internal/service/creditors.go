package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"go.uber.org/zap"
)

// CreditorInput данные кредитора
type CreditorInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Currency string `json:"currency"`
}

// ExternalDebtInput долг перед кредитором
type ExternalDebtInput struct {
	CreditorID  string    `json:"creditorId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// CreditorService внешние кредиторы и долги перед ними
type CreditorService struct {
	base
}

// NewCreditorService создает новый CreditorService
func NewCreditorService(deps Deps) *CreditorService {
	return &CreditorService{base: newBase(deps)}
}

// AddCreditor создает кредитора с нулевым долгом
func (s *CreditorService) AddCreditor(ctx context.Context, in CreditorInput) (*domain.Creditor, error) {
	const op = "creditors.add"

	if err := required(in.Name); err != nil {
		return nil, s.fail(op, err)
	}

	creditor := domain.Creditor{
		Name:      in.Name,
		Phone:     in.Phone,
		Currency:  in.Currency,
		CreatedAt: now(),
	}
	fields, err := docstore.Encode(creditor)
	if err != nil {
		return nil, s.fail(op, err)
	}
	creditor.ID, err = s.store.Insert(ctx, domain.CollectionCreditors, fields, "")
	if err != nil {
		return nil, s.fail(op, err)
	}

	return &creditor, nil
}

// UpdateCreditor меняет данные кредитора; totalDebt не трогается
func (s *CreditorService) UpdateCreditor(ctx context.Context, id string, in CreditorInput) (*domain.Creditor, error) {
	const op = "creditors.update"

	if err := required(in.Name); err != nil {
		return nil, s.fail(op, err, zap.String("creditor_id", id))
	}

	creditor, err := load[domain.Creditor](ctx, s.store, domain.CollectionCreditors, id, domain.ErrCreditorNotFound)
	if err != nil {
		return nil, s.fail(op, err, zap.String("creditor_id", id))
	}

	err = s.store.Update(ctx, domain.CollectionCreditors, id, docstore.Fields{
		"name":     in.Name,
		"phone":    in.Phone,
		"currency": in.Currency,
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("creditor_id", id))
	}

	creditor.Name, creditor.Phone, creditor.Currency = in.Name, in.Phone, in.Currency
	return &creditor, nil
}

// DeleteCreditor удаляет кредитора вместе с его долгами
func (s *CreditorService) DeleteCreditor(ctx context.Context, id string) error {
	const op = "creditors.delete"

	var removed int
	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		found, err := exists(ctx, tx, domain.CollectionCreditors, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q", domain.ErrCreditorNotFound, id)
		}

		debts, err := tx.Query(ctx, domain.CollectionExternalDebts, docstore.Where("creditorId", docstore.OpEqual, id))
		if err != nil {
			return err
		}
		for _, debt := range debts {
			if err := tx.Delete(ctx, domain.CollectionExternalDebts, debt.ID); err != nil {
				return err
			}
		}
		removed = len(debts)

		return tx.Delete(ctx, domain.CollectionCreditors, id)
	})
	if err != nil {
		return s.fail(op, err, zap.String("creditor_id", id))
	}

	s.logger.Info("creditor deleted", zap.String("creditor_id", id), zap.Int("debts", removed))
	return nil
}

// GetCreditors возвращает всех кредиторов
func (s *CreditorService) GetCreditors(ctx context.Context) ([]domain.Creditor, error) {
	docs, err := s.store.GetAll(ctx, domain.CollectionCreditors)
	if err != nil {
		return nil, s.fail("creditors.list", err)
	}
	creditors, err := decodeAll[domain.Creditor](docs)
	if err != nil {
		return nil, s.fail("creditors.list", err)
	}
	return creditors, nil
}

// AddExternalDebt добавляет долг и пересчитывает totalDebt кредитора
func (s *CreditorService) AddExternalDebt(ctx context.Context, in ExternalDebtInput) (*domain.ExternalDebt, error) {
	const op = "creditors.add_debt"

	if err := nonNegative(in.Amount); err != nil {
		return nil, s.fail(op, err, zap.String("creditor_id", in.CreditorID))
	}

	found, err := exists(ctx, s.store, domain.CollectionCreditors, in.CreditorID)
	if err != nil {
		return nil, s.fail(op, err, zap.String("creditor_id", in.CreditorID))
	}
	if !found {
		return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrCreditorNotFound, in.CreditorID), zap.String("creditor_id", in.CreditorID))
	}

	debt := domain.ExternalDebt{
		CreditorID:  in.CreditorID,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   now(),
	}
	if debt.Date.IsZero() {
		debt.Date = debt.CreatedAt
	}

	fields, err := docstore.Encode(debt)
	if err != nil {
		return nil, s.fail(op, err)
	}
	debt.ID, err = s.store.Insert(ctx, domain.CollectionExternalDebts, fields, "")
	if err != nil {
		return nil, s.fail(op, err, zap.String("creditor_id", in.CreditorID))
	}

	return &debt, s.refresh(ctx, op, creditorAggregate(debt.CreditorID))
}

// UpdateExternalDebt меняет долг; при смене кредитора пересчитываются оба
func (s *CreditorService) UpdateExternalDebt(ctx context.Context, id string, in ExternalDebtInput) (*domain.ExternalDebt, error) {
	const op = "creditors.update_debt"

	if err := nonNegative(in.Amount); err != nil {
		return nil, s.fail(op, err, zap.String("debt_id", id))
	}

	debt, err := load[domain.ExternalDebt](ctx, s.store, domain.CollectionExternalDebts, id, domain.ErrExternalDebtNotFound)
	if err != nil {
		return nil, s.fail(op, err, zap.String("debt_id", id))
	}
	previousCreditor := debt.CreditorID

	if in.CreditorID != "" && in.CreditorID != debt.CreditorID {
		found, err := exists(ctx, s.store, domain.CollectionCreditors, in.CreditorID)
		if err != nil {
			return nil, s.fail(op, err, zap.String("debt_id", id))
		}
		if !found {
			return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrCreditorNotFound, in.CreditorID), zap.String("debt_id", id))
		}
		debt.CreditorID = in.CreditorID
	}
	debt.Amount = in.Amount
	debt.Description = in.Description
	if !in.Date.IsZero() {
		debt.Date = in.Date
	}

	err = s.store.Update(ctx, domain.CollectionExternalDebts, id, docstore.Fields{
		"creditorId":  debt.CreditorID,
		"amount":      debt.Amount,
		"description": debt.Description,
		"date":        debt.Date,
	})
	if err != nil {
		return nil, s.fail(op, err, zap.String("debt_id", id))
	}

	return &debt, s.refresh(ctx, op, creditorAggregate(previousCreditor), creditorAggregate(debt.CreditorID))
}

// DeleteExternalDebt удаляет долг и пересчитывает totalDebt кредитора
func (s *CreditorService) DeleteExternalDebt(ctx context.Context, id string) error {
	const op = "creditors.delete_debt"

	debt, err := load[domain.ExternalDebt](ctx, s.store, domain.CollectionExternalDebts, id, domain.ErrExternalDebtNotFound)
	if err != nil {
		return s.fail(op, err, zap.String("debt_id", id))
	}

	if err := s.store.Delete(ctx, domain.CollectionExternalDebts, id); err != nil {
		return s.fail(op, err, zap.String("debt_id", id))
	}

	return s.refresh(ctx, op, creditorAggregate(debt.CreditorID))
}

// GetExternalDebts возвращает долги кредитора; пустой creditorID возвращает все долги
func (s *CreditorService) GetExternalDebts(ctx context.Context, creditorID string) ([]domain.ExternalDebt, error) {
	var conds []docstore.Condition
	if creditorID != "" {
		conds = append(conds, docstore.Where("creditorId", docstore.OpEqual, creditorID))
	}

	debts, err := list[domain.ExternalDebt](ctx, s.store, domain.CollectionExternalDebts, conds...)
	if err != nil {
		return nil, s.fail("creditors.list_debts", err, zap.String("creditor_id", creditorID))
	}
	return debts, nil
}

// RecalculateCreditorDebt пересчитывает totalDebt кредитора
func (s *CreditorService) RecalculateCreditorDebt(ctx context.Context, id string) (float64, error) {
	total, err := s.recalc.CreditorDebt(ctx, id)
	if err != nil {
		return 0, s.fail("creditors.recalculate", err, zap.String("creditor_id", id))
	}
	return total, nil
}
