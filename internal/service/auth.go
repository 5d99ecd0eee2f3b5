package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/utils/jwt"
	"github.com/avc/logistics-backoffice/internal/utils/password"
	"go.uber.org/zap"
)

// AdminCredentials учетная запись администратора из конфигурации
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// customerAuthenticator проверка клиента по логину и паролю
type customerAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// AuthService реализует domain.AuthService
type AuthService struct {
	admin          AdminCredentials
	customers      customerAuthenticator
	passwordHasher password.Hasher
	jwtManager     *jwt.Manager
	logger         *zap.Logger
}

var _ domain.AuthService = (*AuthService)(nil)

// NewAuthService создает новый AuthService
func NewAuthService(
	admin AdminCredentials,
	customers customerAuthenticator,
	passwordHasher password.Hasher,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		admin:          admin,
		customers:      customers,
		passwordHasher: passwordHasher,
		jwtManager:     jwtManager,
		logger:         logger,
	}
}

// Login аутентифицирует администратора или клиента и выдает токен с ролью
func (s *AuthService) Login(ctx context.Context, username, userPassword string) (string, error) {
	if username == "" || userPassword == "" {
		return "", fmt.Errorf("auth service: %w: empty username or password", domain.ErrValidation)
	}

	if s.admin.Username != "" && username == s.admin.Username {
		if err := s.passwordHasher.Check(s.admin.PasswordHash, userPassword); err != nil {
			s.logger.Warn("admin login rejected", zap.Error(err))
			return "", domain.ErrInvalidCredentials
		}
		return s.issue(username, domain.RoleAdmin)
	}

	user, err := s.customers.Authenticate(ctx, username, userPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return "", err
		}
		return "", fmt.Errorf("auth service: failed to authenticate %q: %w", username, err)
	}

	return s.issue(user.ID, domain.RoleCustomer)
}

func (s *AuthService) issue(subject string, role domain.Role) (string, error) {
	token, err := s.jwtManager.Generate(subject, string(role))
	if err != nil {
		return "", fmt.Errorf("auth service: failed to generate token for %q: %w", subject, err)
	}
	return token, nil
}
