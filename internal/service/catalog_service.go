package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
)

type catalogService struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewCatalogService(repo *repository.Repository) CatalogService {
	return &catalogService{
		repo: repo,
		now:  time.Now,
	}
}

func requireAdmin(ctx context.Context) error {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if in.PriceCents < 0 {
		return nil, ErrPriceInvalid
	}
	if in.Stock < 0 {
		return nil, ErrStockInvalid
	}

	if in.CategoryID != nil {
		c, err := s.repo.Categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrCategoryNotFound
		}
	}

	now := s.now()
	p := &models.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ProductNotFoundError{ProductID: id}
	}

	fields := map[string]any{}

	if patch.Name != nil {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.PriceCents != nil {
		if *patch.PriceCents < 0 {
			return nil, ErrPriceInvalid
		}
		fields["price_cents"] = *patch.PriceCents
	}
	if patch.CategoryID != nil {
		c, err := s.repo.Categories.GetByID(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, ErrCategoryNotFound
		}
		fields["category_id"] = *patch.CategoryID
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	if len(fields) == 0 {
		return p, nil
	}
	fields["updated_at"] = s.now()

	if err := s.repo.Products.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Products.GetByID(ctx, id)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.Products.List(ctx, repository.ProductListFilter{
		CategoryID: f.CategoryID,
		Query:      f.Query,
		OnlyActive: f.OnlyActive,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
}

// DeleteProduct удаляет товар из каталога. Товар, на который ссылаются
// незавершённые заказы, удалить нельзя: при отмене такого заказа возврат
// остатка превратился бы в no-op и единицы потерялись бы. Исторические
// (delivered/cancelled) заказы не мешают — их позиции живут снимком.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return &ProductNotFoundError{ProductID: id}
	}

	active, err := s.repo.Orders.CountActiveByProduct(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrProductReferenced
	}

	_, err = s.repo.Products.Delete(ctx, id)
	return err
}

func (s *catalogService) SetStock(ctx context.Context, id uuid.UUID, stock int32) (*models.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, ErrStockInvalid
	}

	ok, err := s.repo.Products.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	return s.repo.Products.GetByID(ctx, id)
}

func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int32) (*models.Product, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ProductNotFoundError{ProductID: id}
	}

	ok, err := s.repo.Products.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   uint32(-delta),
		}
	}
	return s.repo.Products.GetByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	existing, err := s.repo.Categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryExists
	}

	now := s.now()
	c := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := s.repo.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}

	name := strings.TrimSpace(in.Name)
	if existing, err := s.repo.Categories.GetByName(ctx, name); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != id {
		return nil, ErrCategoryExists
	}

	fields := map[string]any{
		"name":        name,
		"description": strings.TrimSpace(in.Description),
		"updated_at":  s.now(),
	}
	if err := s.repo.Categories.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Categories.GetByID(ctx, id)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.repo.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.Categories.List(ctx)
}

// DeleteCategory удаляет категорию; товары не трогаем — FK выставит им
// category_id = NULL.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	ok, err := s.repo.Categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *catalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, limit, offset int) ([]models.Product, int64, error) {
	c, err := s.repo.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, 0, err
	}
	if c == nil {
		return nil, 0, ErrCategoryNotFound
	}
	return s.repo.Products.List(ctx, repository.ProductListFilter{
		CategoryID: &categoryID,
		Limit:      limit,
		Offset:     offset,
	})
}
