package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductImage struct {
	gorm.Model
	Url       string `json:"url" binding:"required"`
	ProductID int    `json:"productId"`
}

type Product struct {
	gorm.Model
	Sku           string           `json:"sku" gorm:"uniqueIndex;size:64"`
	Name          string           `json:"name" binding:"required"`
	Description   string           `json:"description"`
	Category      string           `json:"category" binding:"required"`
	Brand         string           `json:"brand"`
	ProductType   string           `json:"productType"`
	Price         decimal.Decimal  `json:"price" gorm:"type:decimal(10,2)"`
	DiscountPrice *decimal.Decimal `json:"discountPrice" gorm:"type:decimal(10,2)"`
	Stock         int              `json:"stock"`
	Active        bool             `json:"active" gorm:"default:true"`
	SellerID      int              `json:"sellerId" gorm:"index"`
	SellerName    string           `json:"sellerName"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"reviewCount"`
	Images        []ProductImage   `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// EffectivePrice is the price a buyer actually pays: the discount price when
// one is set and strictly below the list price, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// HasValidDiscount reports whether the discount price may be persisted.
// A discount equal to or above the list price is a validation error.
func (p *Product) HasValidDiscount() bool {
	return p.DiscountPrice == nil || p.DiscountPrice.LessThan(p.Price)
}
