package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	domainmocks "github.com/avc/logistics-backoffice/internal/domain/mocks"
	"github.com/avc/logistics-backoffice/internal/recalc"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/avc/logistics-backoffice/internal/testutil"
	"github.com/avc/logistics-backoffice/internal/utils/jwt"
	"github.com/avc/logistics-backoffice/internal/utils/password"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func withClaims(r *http.Request, subject string, role domain.Role) *http.Request {
	claims := &jwt.Claims{Role: string(role), RegisteredClaims: jwtlib.RegisteredClaims{Subject: subject}}
	return r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestAuthHandler_Login(t *testing.T) {
	mockService := domainmocks.NewAuthServiceMock(t)
	handler := NewAuthHandler(mockService, zap.NewNop())

	t.Run("Success", func(t *testing.T) {
		mockService.EXPECT().Login(mock.Anything, "admin", "secret").Return("token", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"secret"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Bearer token", w.Header().Get("Authorization"))
		assert.Equal(t, "token", decodeBody[authResponse](t, w).Token)
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		mockService.EXPECT().Login(mock.Anything, "admin", "wrong").Return("", domain.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"admin","password":"wrong"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeBody[errorResponse](t, w).Error)
	})

	t.Run("Empty fields", func(t *testing.T) {
		mockService.EXPECT().Login(mock.Anything, "", "").Return("", domain.ErrRequiredField).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Internal error", func(t *testing.T) {
		mockService.EXPECT().Login(mock.Anything, "u", "p").Return("", errors.New("db is down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"u","password":"p"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db is down")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPortalHandler(t *testing.T) {
	mockPortal := domainmocks.NewCustomerPortalMock(t)
	handler := NewPortalHandler(mockPortal, zap.NewNop())

	t.Run("Orders", func(t *testing.T) {
		mockPortal.EXPECT().Orders(mock.Anything, "u1").Return([]domain.Order{{ID: "o1", InvoiceNumber: "ali-01"}}, nil).Once()

		req := withClaims(httptest.NewRequest(http.MethodGet, "/api/me/orders", nil), "u1", domain.RoleCustomer)
		w := httptest.NewRecorder()

		handler.Orders(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		orders := decodeBody[[]domain.Order](t, w)
		require.Len(t, orders, 1)
		assert.Equal(t, "ali-01", orders[0].InvoiceNumber)
	})

	t.Run("No orders", func(t *testing.T) {
		mockPortal.EXPECT().Orders(mock.Anything, "u1").Return(nil, nil).Once()

		req := withClaims(httptest.NewRequest(http.MethodGet, "/api/me/orders", nil), "u1", domain.RoleCustomer)
		w := httptest.NewRecorder()

		handler.Orders(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Transactions", func(t *testing.T) {
		mockPortal.EXPECT().Transactions(mock.Anything, "u1").Return([]domain.Transaction{{ID: "t1", Amount: 100}}, nil).Once()

		req := withClaims(httptest.NewRequest(http.MethodGet, "/api/me/transactions", nil), "u1", domain.RoleCustomer)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Profile not found", func(t *testing.T) {
		mockPortal.EXPECT().Profile(mock.Anything, "gone").Return(nil, domain.ErrUserNotFound).Once()

		req := withClaims(httptest.NewRequest(http.MethodGet, "/api/me", nil), "gone", domain.RoleCustomer)
		w := httptest.NewRecorder()

		handler.Profile(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decodeBody[errorResponse](t, w).Error)
	})

	t.Run("Unauthorized without claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me/orders", nil)
		w := httptest.NewRecorder()

		handler.Orders(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Track hides prices", func(t *testing.T) {
		rep := "r1"
		mockPortal.EXPECT().Track(mock.Anything, "ABC123").Return(&domain.Order{
			TrackingID:         "ABC123",
			InvoiceNumber:      "ali-02",
			Status:             domain.StatusShipped,
			RepresentativeID:   &rep,
			RepresentativeName: "Omar",
			SellingPriceLYD:    1000,
		}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/track/ABC123", nil), "trackingId", "ABC123")
		w := httptest.NewRecorder()

		handler.Track(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[trackResponse](t, w)
		assert.Equal(t, "ali-02", resp.InvoiceNumber)
		assert.Equal(t, "Omar", resp.RepresentativeName)
		assert.NotContains(t, w.Body.String(), "sellingPriceLYD")
	})

	t.Run("Track unknown", func(t *testing.T) {
		mockPortal.EXPECT().Track(mock.Anything, "NOPE").Return(nil, domain.ErrOrderNotFound).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/track/NOPE", nil), "trackingId", "NOPE")
		w := httptest.NewRecorder()

		handler.Track(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type adminFixture struct {
	router chi.Router
	store  *docstore.Store
	users  *service.UserService
}

// newAdminFixture собирает часть админского API поверх SQLite в памяти.
// recalculator подменяет движок пересчета для действий заказов.
func newAdminFixture(t *testing.T, recalculator domain.Recalculator) adminFixture {
	t.Helper()

	store := testutil.NewStore(t, docstore.ModeAtomic)
	engine := recalc.NewEngine(store, zap.NewNop())
	if recalculator == nil {
		recalculator = engine
	}

	logger := zap.NewNop()
	users := service.NewUserService(service.Deps{Store: store, Recalc: engine, Logger: logger}, password.NewBCryptHasher(bcrypt.MinCost))
	deps := service.Deps{Store: store, Recalc: recalculator, Logger: logger}

	usersHandler := NewUsersHandler(users, logger)
	ordersHandler := NewOrdersHandler(service.NewOrderService(deps), logger)
	transactionsHandler := NewTransactionsHandler(service.NewTransactionService(deps), logger)
	recordsHandler := NewRecordsHandler(service.NewRecordService(deps), logger)
	settingsHandler := NewSettingsHandler(service.NewSettingsService(deps), logger)
	messagingHandler := NewMessagingHandler(service.NewMessagingService(deps), logger)

	r := chi.NewRouter()
	r.Post("/users", usersHandler.AddUser)
	r.Get("/users", usersHandler.GetUsers)
	r.Get("/users/{id}", usersHandler.GetUser)
	r.Post("/orders", ordersHandler.CreateOrder)
	r.Get("/orders", ordersHandler.GetOrders)
	r.Get("/orders/{id}", ordersHandler.GetOrder)
	r.Delete("/orders/{id}", ordersHandler.DeleteOrder)
	r.Post("/orders/{id}/recalculate", ordersHandler.RecalculateBalance)
	r.Post("/transactions", transactionsHandler.AddTransaction)
	r.Get("/transactions", transactionsHandler.GetTransactions)
	r.Get("/settings", settingsHandler.GetSettings)
	r.Put("/settings", settingsHandler.UpdateSettings)
	r.Post("/conversations", messagingHandler.CreateConversation)
	r.Get("/conversations", messagingHandler.GetConversations)
	r.Get("/conversations/{id}/messages", messagingHandler.GetMessages)
	r.Post("/conversations/{id}/messages", messagingHandler.SendMessage)
	r.Post("/conversations/{id}/read", messagingHandler.MarkRead)
	recordsHandler.Routes(r)

	return adminFixture{router: r, store: store, users: users}
}

func (f adminFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestAdminHandlers_OrderFlow(t *testing.T) {
	f := newAdminFixture(t, nil)

	w := f.do(t, http.MethodPost, "/users", `{"name":"Ali","username":"ali"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	user := decodeBody[domain.User](t, w)

	w = f.do(t, http.MethodPost, "/orders", `{"userId":"`+user.ID+`","sellingPriceLYD":1000,"downPaymentLYD":300}`)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decodeBody[domain.Order](t, w)
	assert.Equal(t, "ali-01", order.InvoiceNumber)
	assert.Equal(t, 700.0, order.RemainingAmount)
	assert.Empty(t, w.Header().Get(StaleHeader))

	w = f.do(t, http.MethodGet, "/users/"+user.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 700.0, decodeBody[domain.User](t, w).Debt)

	w = f.do(t, http.MethodPost, "/transactions", `{"orderId":"`+order.ID+`","type":"payment","amount":200}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/orders/"+order.ID+"/recalculate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500.0, decodeBody[map[string]float64](t, w)["remainingAmount"])

	w = f.do(t, http.MethodGet, "/transactions?orderId="+order.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.Transaction](t, w), 3)

	w = f.do(t, http.MethodDelete, "/orders/"+order.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/orders/"+order.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandlers_ErrorMapping(t *testing.T) {
	f := newAdminFixture(t, nil)

	w := f.do(t, http.MethodPost, "/users", `{"name":"Ali","username":"ali"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	user := decodeBody[domain.User](t, w)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{name: "duplicate username", method: http.MethodPost, path: "/users", body: `{"name":"Other","username":"ali"}`, status: http.StatusConflict, kind: "conflict"},
		{name: "negative price", method: http.MethodPost, path: "/orders", body: `{"userId":"` + user.ID + `","sellingPriceLYD":-1}`, status: http.StatusUnprocessableEntity, kind: "validation"},
		{name: "unknown user", method: http.MethodPost, path: "/orders", body: `{"userId":"missing","sellingPriceLYD":10}`, status: http.StatusNotFound, kind: "not_found"},
		{name: "unknown order", method: http.MethodGet, path: "/orders/missing", status: http.StatusNotFound, kind: "not_found"},
		{name: "broken body", method: http.MethodPost, path: "/orders", body: `{"userId":`, status: http.StatusBadRequest, kind: "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, decodeBody[errorResponse](t, w).Error)
		})
	}
}

func TestAdminHandlers_StaleAggregates(t *testing.T) {
	recalculator := domainmocks.NewRecalculatorMock(t)
	f := newAdminFixture(t, recalculator)

	user, err := f.users.AddUser(context.Background(), service.UserInput{Name: "Ali", Username: "ali"})
	require.NoError(t, err)

	recalculator.EXPECT().UserStats(mock.Anything, user.ID).Return(domain.UserStats{}, errors.New("recalc failed")).Once()

	w := f.do(t, http.MethodPost, "/orders", `{"userId":"`+user.ID+`","sellingPriceLYD":400}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "true", w.Header().Get(StaleHeader))

	// запись прошла, заказ отдается вместе с признаком устаревших агрегатов
	order := decodeBody[domain.Order](t, w)
	assert.Equal(t, "ali-01", order.InvoiceNumber)
	testutil.Fetch(t, f.store, domain.CollectionOrders, order.ID)
}

func TestAdminHandlers_Records(t *testing.T) {
	f := newAdminFixture(t, nil)

	w := f.do(t, http.MethodPost, "/instant-sales", `{"productName":"box","unitPrice":0.1,"quantity":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sale := decodeBody[domain.InstantSale](t, w)
	require.NotEmpty(t, sale.ID)
	assert.Equal(t, 0.3, sale.Total)

	w = f.do(t, http.MethodGet, "/instant-sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.InstantSale](t, w), 1)

	w = f.do(t, http.MethodDelete, "/instant-sales/"+sale.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodDelete, "/instant-sales/"+sale.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/notifications", `{"title":"Hello","body":"all"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	notification := decodeBody[domain.Notification](t, w)

	w = f.do(t, http.MethodPost, "/notifications/"+notification.ID+"/read", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/notifications?userId=u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	notifications := decodeBody[[]domain.Notification](t, w)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Read)
}

func TestAdminHandlers_Settings(t *testing.T) {
	f := newAdminFixture(t, nil)

	w := f.do(t, http.MethodPut, "/settings", `{"exchangeRate":7.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7.5, decodeBody[domain.AppSettings](t, w).ExchangeRate)

	w = f.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7.5, decodeBody[domain.AppSettings](t, w).ExchangeRate)

	w = f.do(t, http.MethodPut, "/settings", `{"exchangeRate":-2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminHandlers_Messaging(t *testing.T) {
	f := newAdminFixture(t, nil)

	w := f.do(t, http.MethodPost, "/conversations", `{"subject":"Delivery","participants":["u1"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	conv := decodeBody[domain.Conversation](t, w)

	// отправитель по умолчанию администратор
	w = f.do(t, http.MethodPost, "/conversations/"+conv.ID+"/messages", `{"text":"Your box arrived"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin", decodeBody[domain.Message](t, w).SenderID)

	w = f.do(t, http.MethodGet, "/conversations?participantId=admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.Conversation](t, w), 1)

	w = f.do(t, http.MethodGet, "/conversations/"+conv.ID+"/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.Message](t, w), 1)

	w = f.do(t, http.MethodPost, "/conversations/"+conv.ID+"/read", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodPost, "/conversations/missing/messages", `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
