package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/utils/password"
	"go.uber.org/zap"
)

// UserInput данные клиента при создании и изменении.
// Пустой Password при изменении оставляет прежний пароль.
type UserInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UserService клиенты и их агрегаты
type UserService struct {
	base
	hasher password.Hasher
}

// NewUserService создает новый UserService
func NewUserService(deps Deps, hasher password.Hasher) *UserService {
	return &UserService{
		base:   newBase(deps),
		hasher: hasher,
	}
}

func sanitize(user domain.User) domain.User {
	user.Password = ""
	return user
}

func (s *UserService) usernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	docs, err := s.store.Query(ctx, domain.CollectionUsers, docstore.Where("username", docstore.OpEqual, username))
	if err != nil {
		return false, err
	}
	for _, doc := range docs {
		if doc.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// AddUser создает клиента с нулевыми агрегатами
func (s *UserService) AddUser(ctx context.Context, in UserInput) (*domain.User, error) {
	const op = "users.add"

	in.Username = strings.TrimSpace(in.Username)
	if err := required(in.Name, in.Username); err != nil {
		return nil, s.fail(op, err)
	}

	taken, err := s.usernameTaken(ctx, in.Username, "")
	if err != nil {
		return nil, s.fail(op, err)
	}
	if taken {
		return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrUsernameTaken, in.Username))
	}

	user := domain.User{
		Name:      in.Name,
		Username:  in.Username,
		Phone:     in.Phone,
		CreatedAt: now(),
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, s.fail(op, err)
		}
		user.Password = hash
	}

	fields, err := docstore.Encode(user)
	if err != nil {
		return nil, s.fail(op, err)
	}
	user.ID, err = s.store.Insert(ctx, domain.CollectionUsers, fields, "")
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("username", user.Username))

	user = sanitize(user)
	return &user, nil
}

// UpdateUser меняет профиль клиента; агрегаты не трогаются
func (s *UserService) UpdateUser(ctx context.Context, id string, in UserInput) (*domain.User, error) {
	const op = "users.update"

	in.Username = strings.TrimSpace(in.Username)
	if err := required(in.Name, in.Username); err != nil {
		return nil, s.fail(op, err, zap.String("user_id", id))
	}

	user, err := load[domain.User](ctx, s.store, domain.CollectionUsers, id, domain.ErrUserNotFound)
	if err != nil {
		return nil, s.fail(op, err, zap.String("user_id", id))
	}

	if in.Username != user.Username {
		taken, err := s.usernameTaken(ctx, in.Username, id)
		if err != nil {
			return nil, s.fail(op, err, zap.String("user_id", id))
		}
		if taken {
			return nil, s.fail(op, fmt.Errorf("%w: %q", domain.ErrUsernameTaken, in.Username), zap.String("user_id", id))
		}
	}

	patch := docstore.Fields{
		"name":     in.Name,
		"username": in.Username,
		"phone":    in.Phone,
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, s.fail(op, err, zap.String("user_id", id))
		}
		patch["password"] = hash
	}

	if err := s.store.Update(ctx, domain.CollectionUsers, id, patch); err != nil {
		return nil, s.fail(op, err, zap.String("user_id", id))
	}

	user.Name, user.Username, user.Phone = in.Name, in.Username, in.Phone
	user = sanitize(user)
	return &user, nil
}

// DeleteUser удаляет клиента без заказов и неотмененных накладных.
// Заказы удаляются отдельно через DeleteOrder, записи журнала без заказа остаются.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	const op = "users.delete"

	err := s.store.RunTransaction(ctx, func(tx *docstore.Tx) error {
		found, err := exists(ctx, tx, domain.CollectionUsers, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %q", domain.ErrUserNotFound, id)
		}

		orders, err := tx.Query(ctx, domain.CollectionOrders, docstore.Where("userId", docstore.OpEqual, id))
		if err != nil {
			return err
		}
		if len(orders) > 0 {
			return fmt.Errorf("%w: %q has %d orders", domain.ErrUserHasOrders, id, len(orders))
		}

		temps, err := tx.Query(ctx, domain.CollectionTempOrders,
			docstore.Where("assignedUserId", docstore.OpEqual, id),
			docstore.Where("parentInvoiceId", docstore.OpEqual, nil),
		)
		if err != nil {
			return err
		}
		for _, temp := range temps {
			if domain.OrderStatus(temp.String("status")) != domain.StatusCancelled {
				return fmt.Errorf("%w: %q has temp order %q", domain.ErrUserHasOrders, id, temp.ID)
			}
		}

		return tx.Delete(ctx, domain.CollectionUsers, id)
	})
	if err != nil {
		return s.fail(op, err, zap.String("user_id", id))
	}

	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// GetUser возвращает клиента без хеша пароля
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := load[domain.User](ctx, s.store, domain.CollectionUsers, id, domain.ErrUserNotFound)
	if err != nil {
		return nil, s.fail("users.get", err, zap.String("user_id", id))
	}
	user = sanitize(user)
	return &user, nil
}

// GetUsers возвращает всех клиентов
func (s *UserService) GetUsers(ctx context.Context) ([]domain.User, error) {
	docs, err := s.store.GetAll(ctx, domain.CollectionUsers)
	if err != nil {
		return nil, s.fail("users.list", err)
	}
	users, err := decodeAll[domain.User](docs)
	if err != nil {
		return nil, s.fail("users.list", err)
	}
	for i := range users {
		users[i] = sanitize(users[i])
	}
	return users, nil
}

// RecalculateUserStats пересчитывает долг и количество заказов клиента
func (s *UserService) RecalculateUserStats(ctx context.Context, id string) (domain.UserStats, error) {
	stats, err := s.recalc.UserStats(ctx, id)
	if err != nil {
		return domain.UserStats{}, s.fail("users.recalculate", err, zap.String("user_id", id))
	}
	return stats, nil
}

// Authenticate проверяет логин и пароль клиента
func (s *UserService) Authenticate(ctx context.Context, username, userPassword string) (*domain.User, error) {
	const op = "users.authenticate"

	if username == "" || userPassword == "" {
		return nil, s.fail(op, fmt.Errorf("%w: empty username or password", domain.ErrValidation))
	}

	users, err := list[domain.User](ctx, s.store, domain.CollectionUsers,
		docstore.Where("username", docstore.OpEqual, username))
	if err != nil {
		return nil, s.fail(op, err)
	}
	if len(users) == 0 || users[0].Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Check(users[0].Password, userPassword); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user := sanitize(users[0])
	return &user, nil
}
