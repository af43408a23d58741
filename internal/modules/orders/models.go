package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	Address string `gorm:"size:300" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	Country string `gorm:"size:100" json:"country"`
}

// OrderItem snapshots the product at purchase time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product"`
	Name      string          `gorm:"size:200;not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Image     string          `gorm:"size:500" json:"image"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
}

// Order is placed already paid: payment is simulated.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"size:50;not null" json:"payment_method"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	IsPaid          bool            `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ItemInput struct {
	Product  uuid.UUID `json:"product"`
	Quantity int       `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []ItemInput     `json:"order_items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
}

type Stats struct {
	TotalOrders       int64  `json:"total_orders"`
	TotalSales        string `json:"total_sales"`
	PaidOrders        int64  `json:"paid_orders"`
	AverageOrderValue string `json:"average_order_value"`
}
