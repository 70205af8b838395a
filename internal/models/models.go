package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username string    `gorm:"type:text;not null"` // уникальность — функциональный индекс lower(username)
	Email    string    `gorm:"type:text;not null"` // уникальность — функциональный индекс lower(email)
	Password string    `gorm:"type:text;not null"` // bcrypt hash
	Role     Role      `gorm:"type:text;not null;default:'user';index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string { return "users" }

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"type:text;not null"`
	Description string     `gorm:"type:text"`
	PriceCents  int64      `gorm:"not null;default:0"`
	Stock       int32      `gorm:"not null;default:0"` // CHECK stock >= 0 в миграции
	IsActive    bool       `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

type ShippingAddress struct {
	Street     string `gorm:"type:text"`
	City       string `gorm:"type:text"`
	PostalCode string `gorm:"type:text"`
	Country    string `gorm:"type:text"`
}

type PaymentInfo struct {
	Method        string        `gorm:"type:text"`
	TransactionID string        `gorm:"type:text"`
	Status        PaymentStatus `gorm:"type:text;not null;default:'pending'"`
	PaidAt        *time.Time
}

type Order struct {
	ID     uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID   `gorm:"type:uuid;not null;index"`
	User   *User       `gorm:"foreignKey:UserID"`
	Status OrderStatus `gorm:"type:text;not null;default:'pending';index"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_"`
	Payment         PaymentInfo     `gorm:"embedded;embeddedPrefix:pay_"`

	TotalItems      int32 `gorm:"not null;default:0"`
	TotalPriceCents int64 `gorm:"not null;default:0"`

	DeliveredAt *time.Time
	CreatedAt   time.Time `gorm:"not null;default:now();index"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"` // каскад на позиции
}

func (Order) TableName() string { return "orders" }

// OrderItem — снимок товара на момент оформления заказа. Цена и название
// копируются из каталога и дальше не пересчитываются, поэтому FK на products
// здесь нет: товар может быть удалён, а исторический заказ должен остаться целым.
type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_items_order_product"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_order_items_order_product"`
	ProductName    string    `gorm:"type:text;not null"`
	Quantity       uint32    `gorm:"type:int;not null"` // CHECK quantity > 0 в миграции
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }
