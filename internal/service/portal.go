package service

import (
	"context"

	"github.com/avc/logistics-backoffice/internal/domain"
)

// PortalService данные для личного кабинета клиента поверх остальных сервисов
type PortalService struct {
	users        *UserService
	orders       *OrderService
	transactions *TransactionService
}

var _ domain.CustomerPortal = (*PortalService)(nil)

// NewPortalService создает новый PortalService
func NewPortalService(users *UserService, orders *OrderService, transactions *TransactionService) *PortalService {
	return &PortalService{
		users:        users,
		orders:       orders,
		transactions: transactions,
	}
}

// Profile возвращает клиента без хеша пароля
func (s *PortalService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}

// Orders возвращает заказы клиента
func (s *PortalService) Orders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.GetOrdersByUser(ctx, userID)
}

// Transactions возвращает журнал клиента
func (s *PortalService) Transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.transactions.GetTransactionsByUser(ctx, userID)
}

// Track ищет заказ по номеру отслеживания
func (s *PortalService) Track(ctx context.Context, trackingID string) (*domain.Order, error) {
	return s.orders.GetOrderByTrackingID(ctx, trackingID)
}
