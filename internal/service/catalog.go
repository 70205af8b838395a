package service

import (
	"context"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

type ProductInput struct {
	CategoryID  *uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	Stock       int32
	IsActive    bool
}

type ProductPatch struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	PriceCents  *int64
	IsActive    *bool
}

type ProductListFilter struct {
	CategoryID *uuid.UUID
	Query      string
	OnlyActive *bool
	Limit      int
	Offset     int
}

type CategoryInput struct {
	Name        string
	Description string
}

type CatalogService interface {
	// products
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, stock int32) (*models.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int32) (*models.Product, error)

	// categories
	CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]models.Product, int64, error)
}
