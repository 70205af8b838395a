package dto

import (
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

type CreateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        string     `json:"name" binding:"required,min=1,max=255"`
	Description string     `json:"description"`
	PriceCents  int64      `json:"price_cents" binding:"min=0"`
	Stock       int32      `json:"stock" binding:"min=0"`
	IsActive    *bool      `json:"is_active"`
}

type UpdateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	PriceCents  *int64     `json:"price_cents"`
	IsActive    *bool      `json:"is_active"`
}

type StockPatchRequest struct {
	// ровно одно из двух: абсолютное значение или дельта
	Stock *int32 `json:"stock"`
	Delta *int32 `json:"delta"`
}

type ProductResponse struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PriceCents  int64      `json:"price_cents"`
	Stock       int32      `json:"stock"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func ToProductResponses(list []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, ToProductResponse(&list[i]))
	}
	return out
}

func ToCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

func ToCategoryResponses(list []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, ToCategoryResponse(&list[i]))
	}
	return out
}
