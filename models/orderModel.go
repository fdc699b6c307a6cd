package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	PaymentMethodCOD    = "cod"
	PaymentMethodCard   = "card"
	PaymentMethodMobile = "mobile"
)

// statusRank orders the forward fulfillment chain. Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// ParseOrderStatus maps a request string to a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransition reports whether a status change is allowed. The chain only
// moves forward one step at a time; cancellation is allowed from pending and
// confirmed only; delivered and cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	if from == OrderStatusDelivered || from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return from == OrderStatusPending || from == OrderStatusConfirmed
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// RollupStatus derives the order-level status from its items: cancelled when
// every item is cancelled, otherwise the least-advanced status among the
// items still in play. An order is delivered only once all active items are.
func RollupStatus(items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderStatusPending
	}
	allCancelled := true
	minRank := statusRank[OrderStatusDelivered]
	for _, item := range items {
		if item.Status == OrderStatusCancelled {
			continue
		}
		allCancelled = false
		if r := statusRank[item.Status]; r < minRank {
			minRank = r
		}
	}
	if allCancelled {
		return OrderStatusCancelled
	}
	for status, rank := range statusRank {
		if rank == minRank {
			return status
		}
	}
	return OrderStatusPending
}

type Order struct {
	gorm.Model
	OrderNumber     string          `json:"orderNumber" gorm:"uniqueIndex;size:64"`
	UserID          int             `json:"userId" gorm:"index"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2)"`
	Shipping        decimal.Decimal `json:"shipping" gorm:"type:decimal(10,2)"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(10,2)"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(10,2)"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);default:'pending'"`
	PaymentRef      string          `json:"paymentRef"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	ShippingAddress datatypes.JSON  `json:"shippingAddress"`
	IdempotencyKey  *string         `json:"-" gorm:"uniqueIndex;size:64"`
	OrderItems      []OrderItem     `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	gorm.Model
	OrderID   int             `json:"orderId" gorm:"index"`
	ProductId int             `json:"productId"`
	SellerID  int             `json:"sellerId" gorm:"index"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2)"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2)"`
	Status    OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending'"`
}
