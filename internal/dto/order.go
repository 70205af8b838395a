package dto

import (
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

type CreateOrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  uint32    `json:"quantity" binding:"required,min=1"`
}

type ShippingAddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type PaymentInfoRequest struct {
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItemRequest `json:"items"`
	ShippingAddress ShippingAddressRequest   `json:"shippingAddress"`
	PaymentInfo     PaymentInfoRequest       `json:"paymentInfo"`
}

type UpdateOrderStatusRequest struct {
	Status        *string `json:"status" binding:"omitempty,oneof=pending sent delivered cancelled"`
	PaymentStatus *string `json:"paymentStatus" binding:"omitempty,oneof=pending completed"`
}

type OrderItemResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	ProductName    string    `json:"productName"`
	Quantity       uint32    `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

type OrderUserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type OrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	User            *OrderUserResponse     `json:"user,omitempty"`
	Status          string                 `json:"status"`
	Items           []OrderItemResponse    `json:"items"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress"`
	Payment         PaymentResponse        `json:"paymentInfo"`
	TotalItems      int32                  `json:"totalItems"`
	TotalPriceCents int64                  `json:"totalPriceCents"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type PaymentResponse struct {
	Method        string     `json:"method,omitempty"`
	TransactionID string     `json:"transactionId,omitempty"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type OrderListResponse struct {
	Orders      []OrderResponse `json:"orders"`
	Total       int64           `json:"total"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

func ToOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		})
	}

	resp := OrderResponse{
		ID:     o.ID,
		Status: string(o.Status),
		Items:  items,
		ShippingAddress: ShippingAddressRequest{
			Street:     o.ShippingAddress.Street,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		Payment: PaymentResponse{
			Method:        o.Payment.Method,
			TransactionID: o.Payment.TransactionID,
			Status:        string(o.Payment.Status),
			PaidAt:        o.Payment.PaidAt,
		},
		TotalItems:      o.TotalItems,
		TotalPriceCents: o.TotalPriceCents,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}

	if o.User != nil {
		resp.User = &OrderUserResponse{
			ID:       o.User.ID,
			Username: o.User.Username,
			Email:    o.User.Email,
		}
	}

	return resp
}

func ToOrderResponses(list []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for i := range list {
		out = append(out, ToOrderResponse(&list[i]))
	}
	return out
}
