package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeWithdrawal TransactionType = "withdrawal"

	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only seller ledger row. Sale rows are written when
// an order item reaches delivered; withdrawal rows are created by seller
// requests and settled by an admin.
type Transaction struct {
	gorm.Model
	SellerID    int               `json:"sellerId" gorm:"index"`
	OrderItemID *int              `json:"orderItemId" gorm:"uniqueIndex"`
	Type        TransactionType   `json:"type" gorm:"type:varchar(20)"`
	Amount      decimal.Decimal   `json:"amount" gorm:"type:decimal(10,2)"`
	Status      TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
}
