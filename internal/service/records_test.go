package service

import (
	"context"
	"testing"
	"time"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordService_Deposits(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	records := NewRecordService(deps)

	deposit, err := records.AddDeposit(ctx, domain.Deposit{CustomerName: "Ali", Amount: 500, Currency: "USD"})
	require.NoError(t, err)
	assert.NotEmpty(t, deposit.ID)
	assert.False(t, deposit.Date.IsZero())

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	_, err = records.UpdateDeposit(ctx, deposit.ID, domain.Deposit{CustomerName: "Ali", Amount: 750, Currency: "USD", Date: date})
	require.NoError(t, err)

	deposits, err := records.GetDeposits(ctx)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, 750.0, deposits[0].Amount)
	assert.True(t, deposits[0].Date.Equal(date))
	assert.True(t, deposits[0].CreatedAt.Equal(deposit.CreatedAt))

	_, err = records.AddDeposit(ctx, domain.Deposit{Amount: -1})
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = records.UpdateDeposit(ctx, "ghost", domain.Deposit{Amount: 1})
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	require.NoError(t, records.DeleteDeposit(ctx, deposit.ID))
	assert.Equal(t, KindNotFound, KindOf(records.DeleteDeposit(ctx, deposit.ID)))
}

func TestRecordService_Expenses(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	records := NewRecordService(deps)

	expense, err := records.AddExpense(ctx, domain.Expense{Category: "fuel", Amount: 40})
	require.NoError(t, err)
	updated, err := records.UpdateExpense(ctx, expense.ID, domain.Expense{Category: "rent", Amount: 90})
	require.NoError(t, err)
	assert.Equal(t, expense.ID, updated.ID)

	expenses, err := records.GetExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "rent", expenses[0].Category)

	require.NoError(t, records.DeleteExpense(ctx, expense.ID))
	assert.Zero(t, count(t, deps, domain.CollectionExpenses))
}

func TestRecordService_Notifications(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	records := NewRecordService(deps)

	personal, err := records.AddNotification(ctx, domain.Notification{UserID: "u1", Title: "Order shipped", Read: true})
	require.NoError(t, err)
	assert.False(t, personal.Read)
	_, err = records.AddNotification(ctx, domain.Notification{Title: "Holiday schedule"})
	require.NoError(t, err)
	_, err = records.AddNotification(ctx, domain.Notification{UserID: "u2", Title: "Payment received"})
	require.NoError(t, err)

	_, err = records.AddNotification(ctx, domain.Notification{UserID: "u1"})
	assert.Equal(t, KindValidation, KindOf(err))

	forUser, err := records.GetNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, forUser, 2)

	all, err := records.GetNotifications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, records.MarkNotificationRead(ctx, personal.ID))
	forUser, err = records.GetNotifications(ctx, "u1")
	require.NoError(t, err)
	for _, n := range forUser {
		assert.Equal(t, n.ID == personal.ID, n.Read)
	}

	assert.Equal(t, KindNotFound, KindOf(records.MarkNotificationRead(ctx, "ghost")))
	assert.Equal(t, 3, count(t, deps, domain.CollectionNotifications))

	require.NoError(t, records.DeleteNotification(ctx, personal.ID))
	assert.Equal(t, 2, count(t, deps, domain.CollectionNotifications))
}

func TestRecordService_ShippingLabels(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	records := NewRecordService(deps)

	label, err := records.AddShippingLabel(ctx, domain.ManualShippingLabel{SenderName: "Shop", Weight: 2.5})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9A-F]{12}$`, label.TrackingID)

	custom, err := records.AddShippingLabel(ctx, domain.ManualShippingLabel{TrackingID: " LY-1 "})
	require.NoError(t, err)
	assert.Equal(t, "LY-1", custom.TrackingID)

	updated, err := records.UpdateShippingLabel(ctx, label.ID, domain.ManualShippingLabel{SenderName: "Shop", Destination: "Tripoli", Weight: 3})
	require.NoError(t, err)
	assert.Equal(t, label.TrackingID, updated.TrackingID)
	assert.True(t, updated.CreatedAt.Equal(label.CreatedAt))

	_, err = records.AddShippingLabel(ctx, domain.ManualShippingLabel{Weight: -1})
	assert.ErrorIs(t, err, domain.ErrNegativeWeight)
	_, err = records.UpdateShippingLabel(ctx, "ghost", domain.ManualShippingLabel{})
	assert.Equal(t, KindNotFound, KindOf(err))

	labels, err := records.GetShippingLabels(ctx)
	require.NoError(t, err)
	assert.Len(t, labels, 2)

	require.NoError(t, records.DeleteShippingLabel(ctx, custom.ID))
	assert.Equal(t, 1, count(t, deps, domain.CollectionShippingLabels))
}

func TestRecordService_InstantSales(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	records := NewRecordService(deps)

	sale, err := records.AddInstantSale(ctx, domain.InstantSale{ProductName: "Phone case", Quantity: 3, UnitPrice: 0.1, Total: 999})
	require.NoError(t, err)
	assert.Equal(t, 0.3, sale.Total)

	updated, err := records.UpdateInstantSale(ctx, sale.ID, domain.InstantSale{ProductName: "Phone case", Quantity: 4, UnitPrice: 2.5})
	require.NoError(t, err)
	assert.Equal(t, 10.0, updated.Total)

	sales, err := records.GetInstantSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 10.0, sales[0].Total)

	_, err = records.AddInstantSale(ctx, domain.InstantSale{Quantity: -1})
	assert.Equal(t, KindValidation, KindOf(err))

	require.NoError(t, records.DeleteInstantSale(ctx, sale.ID))
	assert.Zero(t, count(t, deps, domain.CollectionInstantSales))
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	settings := NewSettingsService(deps)

	current, err := settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, current.ExchangeRate)
	assert.Equal(t, 1, count(t, deps, domain.CollectionSettings))

	rate, price := 5.2, 12.0
	updated, err := settings.UpdateSettings(ctx, SettingsUpdate{ExchangeRate: &rate, PricePerKiloLYD: &price})
	require.NoError(t, err)
	assert.Equal(t, 5.2, updated.ExchangeRate)
	assert.Equal(t, 12.0, updated.PricePerKiloLYD)

	usd := 3.0
	updated, err = settings.UpdateSettings(ctx, SettingsUpdate{PricePerKiloUSD: &usd})
	require.NoError(t, err)
	assert.Equal(t, 5.2, updated.ExchangeRate)
	assert.Equal(t, 3.0, updated.PricePerKiloUSD)

	zero, negative := 0.0, -1.0
	_, err = settings.UpdateSettings(ctx, SettingsUpdate{ExchangeRate: &zero})
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = settings.UpdateSettings(ctx, SettingsUpdate{PricePerKiloLYD: &negative})
	assert.Equal(t, KindValidation, KindOf(err))
}
