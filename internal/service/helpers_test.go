package service

import (
	"context"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/recalc"
	"github.com/avc/logistics-backoffice/internal/testutil"
	"github.com/avc/logistics-backoffice/internal/utils/password"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestDeps(t *testing.T, mode docstore.Mode) Deps {
	t.Helper()
	store := testutil.NewStore(t, mode)
	return Deps{
		Store:  store,
		Recalc: recalc.NewEngine(store, zap.NewNop()),
		Logger: zap.NewNop(),
	}
}

func newTestUsers(deps Deps) *UserService {
	return NewUserService(deps, password.NewBCryptHasher(bcrypt.MinCost))
}

func addTestUser(t *testing.T, deps Deps, username string) *domain.User {
	t.Helper()
	user, err := newTestUsers(deps).AddUser(context.Background(), UserInput{Name: "Customer " + username, Username: username})
	require.NoError(t, err)
	return user
}

func fetchUser(t *testing.T, deps Deps, id string) domain.User {
	t.Helper()
	user, err := decode[domain.User](testutil.Fetch(t, deps.Store, domain.CollectionUsers, id))
	require.NoError(t, err)
	return user
}

func fetchOrder(t *testing.T, deps Deps, id string) domain.Order {
	t.Helper()
	order, err := decode[domain.Order](testutil.Fetch(t, deps.Store, domain.CollectionOrders, id))
	require.NoError(t, err)
	return order
}

func count(t *testing.T, deps Deps, c docstore.Collection, conds ...docstore.Condition) int {
	t.Helper()
	docs, err := deps.Store.Query(context.Background(), c, conds...)
	require.NoError(t, err)
	return len(docs)
}
