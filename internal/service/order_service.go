package service

import (
	"context"
	"math"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderService struct {
	repo *repository.Repository
	bus  EventBus
	now  func() time.Time
	log  *zap.Logger
}

func NewOrderService(repo *repository.Repository, bus EventBus, log *zap.Logger) OrderService {
	return &orderService{
		repo: repo,
		bus:  bus,
		now:  time.Now,
		log:  log,
	}
}

// CreateOrder оформляет заказ: валидация, резервирование остатков, снимок
// позиций и запись заказа — всё в одной транзакции. Любая ошибка на любом
// шаге откатывает уже выполненные списания, частичных резервов не остаётся.
func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// Повторы одного товара складываем в одну позицию: в заказе на товар
	// ровно одна строка. Количества проверяем до списаний, чтобы некорректный
	// ввод не доходил до базы.
	items := make([]CreateOrderItem, 0, len(in.Items))
	pos := make(map[uuid.UUID]int, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity == 0 || it.Quantity > math.MaxInt32 {
			return nil, ErrQuantityInvalid
		}
		j, seen := pos[it.ProductID]
		if !seen {
			pos[it.ProductID] = len(items)
			items = append(items, it)
			continue
		}
		q := uint64(items[j].Quantity) + uint64(it.Quantity)
		if q > math.MaxInt32 {
			return nil, ErrQuantityInvalid
		}
		items[j].Quantity = uint32(q)
	}

	var (
		order *models.Order
		now   = s.now()
	)

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		itemsDB := make([]models.OrderItem, 0, len(items))
		var (
			total      int64
			totalItems int32
		)

		for _, it := range items {
			p, err := tx.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return &ProductNotFoundError{ProductID: it.ProductID}
			}
			if p.Stock < int32(it.Quantity) {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   it.Quantity,
				}
			}

			ok, err := tx.Products.AdjustStock(ctx, p.ID, -int32(it.Quantity))
			if err != nil {
				return err
			}
			if !ok {
				// Конкурентный заказ успел списать раньше нас. Перечитываем
				// остаток, чтобы в ответе была актуальная доступность.
				cur, err := tx.Products.GetByID(ctx, p.ID)
				if err != nil {
					return err
				}
				var avail int32
				if cur != nil {
					avail = cur.Stock
				}
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   avail,
					Requested:   it.Quantity,
				}
			}

			line := int64(it.Quantity) * p.PriceCents
			total += line
			totalItems += int32(it.Quantity)

			itemsDB = append(itemsDB, models.OrderItem{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Quantity:       it.Quantity,
				UnitPriceCents: p.PriceCents,
				LineTotalCents: line,
				CreatedAt:      now,
			})
		}

		order = &models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
			Payment: models.PaymentInfo{
				Method:        in.PaymentMethod,
				TransactionID: in.TransactionID,
				Status:        models.PaymentStatusPending,
			},
			TotalItems:      totalItems,
			TotalPriceCents: total,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}

		for i := range itemsDB {
			itemsDB[i].OrderID = order.ID
		}

		if err := tx.OrderItems.BulkCreate(ctx, itemsDB); err != nil {
			return err
		}

		order.Items = itemsDB
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		evItems := make([]OrderItemEvent, 0, len(order.Items))
		for _, it := range order.Items {
			evItems = append(evItems, OrderItemEvent{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				PriceCents:  it.UnitPriceCents,
				LineTotal:   it.LineTotalCents,
			})
		}
		if err := s.bus.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:    order.ID,
			UserID:     order.UserID,
			Items:      evItems,
			TotalCents: order.TotalPriceCents,
			CreatedAt:  order.CreatedAt,
		}); err != nil {
			s.log.Warn("Не удалось опубликовать событие о создании заказа",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var ord *models.Order
	if role == models.RoleAdmin {
		ord, err = s.repo.Orders.GetByID(ctx, id)
	} else {
		ord, err = s.repo.Orders.GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f OrderListFilter) (*OrderPage, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	rf := repository.OrderListFilter{
		Status:     f.Status,
		OrderID:    f.OrderID,
		UserSearch: f.UserSearch,
		Limit:      f.Limit,
		Offset:     (f.Page - 1) * f.Limit,
	}
	if role != models.RoleAdmin {
		rf.UserID = &userID
	}

	orders, total, err := s.repo.Orders.List(ctx, rf)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))

	return &OrderPage{
		Orders:      orders,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: f.Page,
	}, nil
}

// UpdateStatus — административная смена статуса. Допустимы только переходы
// вперёд по машине статусов; отмена идёт через CancelOrder, иначе остатки
// не вернутся на склад.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, in StatusPatchInput) (*models.Order, error) {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	patch := repository.OrderStatusPatch{}
	now := s.now()

	if in.Status != nil {
		to := *in.Status
		if to == models.OrderStatusCancelled {
			return nil, ErrCancelViaUpdate
		}
		if !CanTransition(ord.Status, to) {
			return nil, &InvalidTransitionError{From: ord.Status, To: to}
		}
		patch.Status = &to
		if to == models.OrderStatusDelivered {
			patch.DeliveredAt = &now
		}
	}

	if in.PaymentStatus != nil {
		ps := *in.PaymentStatus
		if ord.Payment.Status == models.PaymentStatusCompleted && ps != models.PaymentStatusCompleted {
			return nil, &InvalidTransitionError{From: models.OrderStatus(ord.Payment.Status), To: models.OrderStatus(ps)}
		}
		patch.PaymentStatus = &ps
		if ps == models.PaymentStatusCompleted && ord.Payment.Status != models.PaymentStatusCompleted {
			patch.PaidAt = &now
		}
	}

	if err := s.repo.Orders.UpdateStatus(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.repo.Orders.GetByID(ctx, id)
}

// CancelOrder отменяет заказ и возвращает остатки на склад. Восстановление
// идёт тем же атомарным AdjustStock; для товара, удалённого из каталога,
// возврат — no-op, а не ошибка: его единицы уже выведены из оборота.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var ord *models.Order

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		ord, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ord == nil {
			return ErrOrderNotFound
		}

		if role != models.RoleAdmin && ord.UserID != userID {
			return ErrForbidden
		}

		// Сначала условный перевод в cancelled: он же и есть замок от
		// двойной отмены. Возврат остатков идёт только после выигранного
		// перевода, иначе две конкурентные отмены вернут товар дважды.
		ok, err := tx.Orders.MarkCancelled(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			cur, err := tx.Orders.GetByID(ctx, id)
			if err != nil {
				return err
			}
			from := ord.Status
			if cur != nil {
				from = cur.Status
			}
			return &InvalidTransitionError{From: from, To: models.OrderStatusCancelled}
		}

		for _, it := range ord.Items {
			ok, err := tx.Products.AdjustStock(ctx, it.ProductID, int32(it.Quantity))
			if err != nil {
				return err
			}
			if !ok {
				s.log.Info("Возврат остатка пропущен: товар удалён из каталога",
					zap.String("product_id", it.ProductID.String()),
					zap.Uint32("quantity", it.Quantity))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ord, err = s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		if err := s.bus.PublishOrderCancelled(ctx, OrderCancelledEvent{
			OrderID:     ord.ID,
			UserID:      ord.UserID,
			CancelledAt: s.now(),
		}); err != nil {
			s.log.Warn("Не удалось опубликовать событие об отмене заказа",
				zap.String("order_id", ord.ID.String()), zap.Error(err))
		}
	}

	return ord, nil
}
