package domain

import (
	"errors"
	"fmt"
)

// Базовые категории ошибок
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Ошибки отсутствующих сущностей
var (
	ErrUserNotFound           = fmt.Errorf("user %w", ErrNotFound)
	ErrOrderNotFound          = fmt.Errorf("order %w", ErrNotFound)
	ErrTempOrderNotFound      = fmt.Errorf("temp order %w", ErrNotFound)
	ErrSubOrderNotFound       = fmt.Errorf("sub order %w", ErrNotFound)
	ErrTransactionNotFound    = fmt.Errorf("transaction %w", ErrNotFound)
	ErrRepresentativeNotFound = fmt.Errorf("representative %w", ErrNotFound)
	ErrCreditorNotFound       = fmt.Errorf("creditor %w", ErrNotFound)
	ErrExternalDebtNotFound   = fmt.Errorf("external debt %w", ErrNotFound)
	ErrConversationNotFound   = fmt.Errorf("conversation %w", ErrNotFound)
	ErrRecordNotFound         = fmt.Errorf("record %w", ErrNotFound)
)

// Ошибки валидации ввода
var (
	ErrNegativeAmount = fmt.Errorf("%w: amount must not be negative", ErrValidation)
	ErrNegativeWeight = fmt.Errorf("%w: weight must not be negative", ErrValidation)
	ErrInvalidAmount  = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidStatus  = fmt.Errorf("%w: unknown order status", ErrValidation)
	ErrRequiredField  = fmt.Errorf("%w: required field is empty", ErrValidation)
	ErrNothingToMerge = fmt.Errorf("%w: at least two temp orders are required", ErrValidation)
	ErrInvalidSplit   = fmt.Errorf("%w: split must leave sub orders on both sides", ErrValidation)

	ErrTempOrderCancelled = fmt.Errorf("%w: cancelled temp order cannot be converted", ErrValidation)
)

// Ошибки состояния
var (
	ErrUsernameTaken       = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrUserHasOrders       = fmt.Errorf("%w: user has orders", ErrConflict)
	ErrTempOrderConverted  = fmt.Errorf("%w: temp order already converted", ErrConflict)
	ErrTempOrderUnassigned = fmt.Errorf("%w: temp order has no assigned user", ErrConflict)
)

// ErrInvalidCredentials неверная пара логин/пароль
var ErrInvalidCredentials = errors.New("invalid credentials")
