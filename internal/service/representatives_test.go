package service

import (
	"context"
	"sync"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignedOrders(t *testing.T, deps Deps, id string) float64 {
	t.Helper()
	return testutil.Fetch(t, deps.Store, domain.CollectionRepresentatives, id).Float("assignedOrders")
}

// assertCountsConserved сверяет счетчики с пересчетом по заказам
func assertCountsConserved(t *testing.T, deps Deps, reps *RepresentativeService, ids ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range ids {
		before := assignedOrders(t, deps, id)
		recalculated, err := reps.RecalculateRepresentativeAssignments(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before, float64(recalculated), "representative %s", id)
	}
}

func TestRepresentativeService_Assignment(t *testing.T) {
	for _, mode := range []docstore.Mode{docstore.ModeAtomic, docstore.ModeCompat} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			deps := newTestDeps(t, mode)
			orders := NewOrderService(deps)
			reps := NewRepresentativeService(deps)
			user := addTestUser(t, deps, "u1")

			order, err := orders.CreateOrder(ctx, OrderInput{UserID: user.ID, SellingPriceLYD: 100})
			require.NoError(t, err)
			r1, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R1"})
			require.NoError(t, err)
			r2, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R2"})
			require.NoError(t, err)

			assigned, err := reps.AssignRepresentative(ctx, order.ID, r1.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusOutForDelivery, assigned.Status)
			assert.Equal(t, 1.0, assignedOrders(t, deps, r1.ID))

			_, err = reps.AssignRepresentative(ctx, order.ID, r2.ID)
			require.NoError(t, err)
			assert.Equal(t, 0.0, assignedOrders(t, deps, r1.ID))
			assert.Equal(t, 1.0, assignedOrders(t, deps, r2.ID))

			stored := fetchOrder(t, deps, order.ID)
			require.NotNil(t, stored.RepresentativeID)
			assert.Equal(t, r2.ID, *stored.RepresentativeID)
			assert.Equal(t, "R2", stored.RepresentativeName)

			// повторное назначение того же представителя не меняет счетчик
			_, err = reps.AssignRepresentative(ctx, order.ID, r2.ID)
			require.NoError(t, err)
			assert.Equal(t, 1.0, assignedOrders(t, deps, r2.ID))

			unassigned, err := reps.UnassignRepresentative(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusReady, unassigned.Status)
			assert.Equal(t, 0.0, assignedOrders(t, deps, r2.ID))
			assert.Nil(t, fetchOrder(t, deps, order.ID).RepresentativeID)

			assertCountsConserved(t, deps, reps, r1.ID, r2.ID)
		})
	}
}

func TestRepresentativeService_BulkAssign(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	orders := NewOrderService(deps)
	reps := NewRepresentativeService(deps)
	user := addTestUser(t, deps, "u1")

	r1, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R1"})
	require.NoError(t, err)
	r2, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R2"})
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 3; i++ {
		order, err := orders.CreateOrder(ctx, OrderInput{UserID: user.ID, SellingPriceLYD: 10})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	require.NoError(t, reps.BulkAssignRepresentative(ctx, ids[:2], r1.ID))
	assert.Equal(t, 2.0, assignedOrders(t, deps, r1.ID))

	require.NoError(t, reps.BulkAssignRepresentative(ctx, append(ids, ids[0]), r2.ID))
	assert.Equal(t, 0.0, assignedOrders(t, deps, r1.ID))
	assert.Equal(t, 3.0, assignedOrders(t, deps, r2.ID))

	repOrders, err := reps.GetRepresentativeOrders(ctx, r2.ID)
	require.NoError(t, err)
	assert.Len(t, repOrders, 3)

	assertCountsConserved(t, deps, reps, r1.ID, r2.ID)

	t.Run("Missing order aborts before writes", func(t *testing.T) {
		err := reps.BulkAssignRepresentative(ctx, []string{ids[0], "ghost"}, r1.ID)
		assert.Equal(t, KindNotFound, KindOf(err))
		assert.Equal(t, 0.0, assignedOrders(t, deps, r1.ID))
	})

	t.Run("Empty list", func(t *testing.T) {
		err := reps.BulkAssignRepresentative(ctx, nil, r1.ID)
		assert.Equal(t, KindValidation, KindOf(err))
	})
}

func TestRepresentativeService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	orders := NewOrderService(deps)
	reps := NewRepresentativeService(deps)
	user := addTestUser(t, deps, "u1")

	order, err := orders.CreateOrder(ctx, OrderInput{UserID: user.ID, SellingPriceLYD: 1000, DownPaymentLYD: 200})
	require.NoError(t, err)
	rep, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R1"})
	require.NoError(t, err)
	_, err = reps.AssignRepresentative(ctx, order.ID, rep.ID)
	require.NoError(t, err)

	paid, err := reps.RecordRepresentativePayment(ctx, order.ID, 300)
	require.NoError(t, err)
	assert.Equal(t, 500.0, paid.RemainingAmount)
	assert.Equal(t, domain.StatusDelivered, paid.Status)
	assert.NotNil(t, paid.DeliveredAt)
	assert.Equal(t, 500.0, fetchUser(t, deps, user.ID).Debt)

	balance, err := orders.RecalculateOrderBalance(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, balance)

	_, err = reps.RecordRepresentativePayment(ctx, order.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = reps.RecordRepresentativePayment(ctx, "ghost", 10)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRepresentativeService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	orders := NewOrderService(deps)
	reps := NewRepresentativeService(deps)
	user := addTestUser(t, deps, "u1")

	order, err := orders.CreateOrder(ctx, OrderInput{UserID: user.ID, SellingPriceLYD: 100})
	require.NoError(t, err)
	rep, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R1", Phone: "1"})
	require.NoError(t, err)
	_, err = reps.AssignRepresentative(ctx, order.ID, rep.ID)
	require.NoError(t, err)

	updated, err := reps.UpdateRepresentative(ctx, rep.ID, RepresentativeInput{Name: "Courier", Phone: "2"})
	require.NoError(t, err)
	assert.Equal(t, "Courier", updated.Name)
	assert.Equal(t, 1, updated.AssignedOrders)
	assert.Equal(t, "Courier", fetchOrder(t, deps, order.ID).RepresentativeName)

	_, err = reps.UpdateRepresentative(ctx, rep.ID, RepresentativeInput{})
	assert.Equal(t, KindValidation, KindOf(err))

	require.NoError(t, reps.DeleteRepresentative(ctx, rep.ID))
	stored := fetchOrder(t, deps, order.ID)
	assert.Nil(t, stored.RepresentativeID)
	assert.Equal(t, domain.StatusReady, stored.Status)

	all, err := reps.GetRepresentatives(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.Equal(t, KindNotFound, KindOf(reps.DeleteRepresentative(ctx, rep.ID)))
}

func TestRepresentativeService_DeletedPreviousRepresentative(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	reps := NewRepresentativeService(deps)

	testutil.Put(t, deps.Store, domain.CollectionUsers, "u1", docstore.Fields{"name": "U1", "username": "u1"})
	testutil.Put(t, deps.Store, domain.CollectionOrders, "o1", docstore.Fields{"userId": "u1", "status": "ready", "representativeId": "gone"})
	r1, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R1"})
	require.NoError(t, err)

	_, err = reps.AssignRepresentative(ctx, "o1", r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, assignedOrders(t, deps, r1.ID))
	assert.Equal(t, 1, count(t, deps, domain.CollectionRepresentatives))
}

func TestRepresentativeService_ConcurrentAssignSerializes(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t, docstore.ModeAtomic)
	orders := NewOrderService(deps)
	reps := NewRepresentativeService(deps)
	user := addTestUser(t, deps, "u1")

	r1, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R1"})
	require.NoError(t, err)
	r2, err := reps.AddRepresentative(ctx, RepresentativeInput{Name: "R2"})
	require.NoError(t, err)

	const rounds = 20
	for i := 0; i < rounds; i++ {
		order, err := orders.CreateOrder(ctx, OrderInput{UserID: user.ID, SellingPriceLYD: 10})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, repID := range []string{r1.ID, r2.ID} {
			wg.Add(1)
			go func(repID string) {
				defer wg.Done()
				_, err := reps.AssignRepresentative(ctx, order.ID, repID)
				assert.NoError(t, err)
			}(repID)
		}
		wg.Wait()
	}

	// каждый заказ назначен ровно одному представителю
	assert.Equal(t, float64(rounds), assignedOrders(t, deps, r1.ID)+assignedOrders(t, deps, r2.ID))
	assertCountsConserved(t, deps, reps, r1.ID, r2.ID)
}
