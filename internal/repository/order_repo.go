package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	UserID     *uuid.UUID
	Status     *models.OrderStatus
	OrderID    string // частичное совпадение по id (case-insensitive)
	UserSearch string // частичное совпадение по username/email владельца
	Limit      int
	Offset     int
}

type OrderStatusPatch struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	DeliveredAt   *time.Time
	PaidAt        *time.Time
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, patch OrderStatusPatch) error
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)
	CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("User").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("User").
		First(&ord, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// List применяет все фильтры на уровне SQL: Count считается после фильтрации,
// пагинация — после Count. Поиск по владельцу идёт через JOIN users, поэтому
// выборка не тянет всю таблицу заказов в память.
func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("orders.user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("orders.status = ?", *f.Status)
	}
	if s := strings.TrimSpace(f.OrderID); s != "" {
		q = q.Where("orders.id::text ILIKE ?", "%"+s+"%")
	}
	if s := strings.TrimSpace(f.UserSearch); s != "" {
		q = q.Joins("JOIN users ON users.id = orders.user_id").
			Where("users.username ILIKE ? OR users.email ILIKE ?", "%"+s+"%", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.Order
	err := q.Order("orders.created_at DESC").Limit(f.Limit).Offset(f.Offset).
		Preload("Items").Preload("User").Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, patch OrderStatusPatch) error {
	upd := map[string]any{}
	if patch.Status != nil {
		upd["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		upd["pay_status"] = *patch.PaymentStatus
	}
	if patch.DeliveredAt != nil {
		upd["delivered_at"] = *patch.DeliveredAt
	}
	if patch.PaidAt != nil {
		upd["pay_paid_at"] = *patch.PaidAt
	}
	if len(upd) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(upd).Error
}

// MarkCancelled переводит заказ в cancelled одним условным UPDATE. Перевод
// срабатывает только из pending/sent; из двух конкурентных отмен выиграет
// ровно одна — вердикт по RowsAffected, как и при списании остатков.
func (r *orderRepo) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status IN ?", id,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusSent}).
		Update("status", models.OrderStatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountActiveByProduct считает незавершённые заказы (pending/sent), в которых
// есть позиция с данным товаром. Используется как защита от удаления товара,
// чьи единицы ещё зарезервированы.
func (r *orderRepo) CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.product_id = ?", productID).
		Where("orders.status IN ?", []models.OrderStatus{models.OrderStatusPending, models.OrderStatusSent}).
		Count(&cnt).Error
	return cnt, err
}
