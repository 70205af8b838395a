package service

import (
	"context"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

type CreateOrderItem struct {
	ProductID uuid.UUID
	Quantity  uint32
}

type CreateOrderInput struct {
	Items           []CreateOrderItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	TransactionID   string
}

type OrderListFilter struct {
	Status     *models.OrderStatus
	OrderID    string
	UserSearch string
	Page       int
	Limit      int
}

type OrderPage struct {
	Orders      []models.Order
	Total       int64
	TotalPages  int
	CurrentPage int
}

type StatusPatchInput struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderListFilter) (*OrderPage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, in StatusPatchInput) (*models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// CanTransition описывает машину статусов заказа:
// pending -> sent -> delivered; pending|sent -> cancelled.
// delivered и cancelled — терминальные.
func CanTransition(from, to models.OrderStatus) bool {
	switch from {
	case models.OrderStatusPending:
		return to == models.OrderStatusSent || to == models.OrderStatusCancelled
	case models.OrderStatusSent:
		return to == models.OrderStatusDelivered || to == models.OrderStatusCancelled
	default:
		return false
	}
}
