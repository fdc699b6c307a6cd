package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart. A (user, product) pair is unique:
// re-adding a product increments Quantity on the existing row. Removal is a
// hard delete — a soft-deleted row would keep holding the unique pair and
// block the product from ever being re-added.
type CartItem struct {
	ID              uint            `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	UserID          int             `json:"userId" gorm:"index;uniqueIndex:idx_cart_user_product"`
	ProductId       int             `json:"productId" gorm:"uniqueIndex:idx_cart_user_product"`
	ProductName     string          `json:"productName"`
	ProductImageUrl string          `json:"productImageUrl"`
	UnitPrice       decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2)"`
	Quantity        int             `json:"quantity"`
}

// CartLineView is a cart line joined against the catalog for display.
// Available is false when the referenced product no longer resolves; such a
// line is rendered degraded (no current price, actions disabled) rather than
// hidden.
type CartLineView struct {
	CartItem
	Available    bool             `json:"available"`
	CurrentPrice *decimal.Decimal `json:"currentPrice"`
	Stock        int              `json:"stock"`
}
