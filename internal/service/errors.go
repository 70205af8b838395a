package service

import (
	"errors"
	"fmt"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")

	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already taken")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrOrderNotFound    = errors.New("order not found")

	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrCancelViaUpdate = errors.New("use the cancel operation to cancel an order")
	ErrQuantityInvalid = errors.New("item quantity out of range")
	ErrPriceInvalid    = errors.New("price must be >= 0")
	ErrStockInvalid    = errors.New("stock must be >= 0")

	// Товар нельзя удалить, пока он фигурирует в незавершённых заказах:
	// его остаток ещё может вернуться при отмене.
	ErrProductReferenced = errors.New("product is referenced by active orders")
)

// ProductNotFoundError указывает, какой именно товар из запроса не найден.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError несёт доступное и запрошенное количество —
// клиент должен видеть, сколько единиц ещё можно заказать.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int32
	Requested   uint32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// InvalidTransitionError — попытка недопустимого перехода статуса.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition %s -> %s", e.From, e.To)
}
