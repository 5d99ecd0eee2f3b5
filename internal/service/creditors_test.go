package service

import (
	"context"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalDebt(t *testing.T, deps Deps, id string) float64 {
	t.Helper()
	return testutil.Fetch(t, deps.Store, domain.CollectionCreditors, id).Float("totalDebt")
}

func TestCreditorService_DebtConservation(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	creditors := NewCreditorService(deps)

	c1, err := creditors.AddCreditor(ctx, CreditorInput{Name: "Supplier", Currency: "USD"})
	require.NoError(t, err)
	c2, err := creditors.AddCreditor(ctx, CreditorInput{Name: "Warehouse", Currency: "LYD"})
	require.NoError(t, err)
	assert.Zero(t, c1.TotalDebt)

	first, err := creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: c1.ID, Amount: 100.1})
	require.NoError(t, err)
	assert.False(t, first.Date.IsZero())
	_, err = creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: c1.ID, Amount: 200.2})
	require.NoError(t, err)
	assert.Equal(t, 300.3, totalDebt(t, deps, c1.ID))

	moved, err := creditors.UpdateExternalDebt(ctx, first.ID, ExternalDebtInput{CreditorID: c2.ID, Amount: 150})
	require.NoError(t, err)
	assert.Equal(t, c2.ID, moved.CreditorID)
	assert.Equal(t, 200.2, totalDebt(t, deps, c1.ID))
	assert.Equal(t, 150.0, totalDebt(t, deps, c2.ID))

	debts, err := creditors.GetExternalDebts(ctx, c2.ID)
	require.NoError(t, err)
	assert.Len(t, debts, 1)
	all, err := creditors.GetExternalDebts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, creditors.DeleteExternalDebt(ctx, first.ID))
	assert.Equal(t, 0.0, totalDebt(t, deps, c2.ID))

	recalculated, err := creditors.RecalculateCreditorDebt(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.2, recalculated)
}

func TestCreditorService_Validation(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	creditors := NewCreditorService(deps)

	_, err := creditors.AddCreditor(ctx, CreditorInput{})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: "ghost", Amount: 10})
	assert.ErrorIs(t, err, domain.ErrCreditorNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	creditor, err := creditors.AddCreditor(ctx, CreditorInput{Name: "Supplier"})
	require.NoError(t, err)
	_, err = creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: creditor.ID, Amount: -1})
	assert.Equal(t, KindValidation, KindOf(err))

	debt, err := creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: creditor.ID, Amount: 10})
	require.NoError(t, err)
	_, err = creditors.UpdateExternalDebt(ctx, debt.ID, ExternalDebtInput{CreditorID: "ghost", Amount: 10})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, 10.0, totalDebt(t, deps, creditor.ID))

	_, err = creditors.UpdateExternalDebt(ctx, "ghost", ExternalDebtInput{Amount: 1})
	assert.ErrorIs(t, err, domain.ErrExternalDebtNotFound)
}

func TestCreditorService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	creditors := NewCreditorService(deps)

	creditor, err := creditors.AddCreditor(ctx, CreditorInput{Name: "Supplier"})
	require.NoError(t, err)
	_, err = creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: creditor.ID, Amount: 40})
	require.NoError(t, err)
	_, err = creditors.AddExternalDebt(ctx, ExternalDebtInput{CreditorID: creditor.ID, Amount: 60})
	require.NoError(t, err)

	updated, err := creditors.UpdateCreditor(ctx, creditor.ID, CreditorInput{Name: "Main supplier", Phone: "123"})
	require.NoError(t, err)
	assert.Equal(t, "Main supplier", updated.Name)
	assert.Equal(t, 100.0, updated.TotalDebt)
	assert.Equal(t, 100.0, totalDebt(t, deps, creditor.ID))

	require.NoError(t, creditors.DeleteCreditor(ctx, creditor.ID))
	assert.Zero(t, count(t, deps, domain.CollectionExternalDebts))

	list, err := creditors.GetCreditors(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, KindNotFound, KindOf(creditors.DeleteCreditor(ctx, creditor.ID)))
	_, err = creditors.RecalculateCreditorDebt(ctx, creditor.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}
