package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sokoni-app/sokoni-api/models"
	"gorm.io/gorm"
)

// CommissionRate is the marketplace cut on every sale.
var CommissionRate = decimal.NewFromFloat(0.10)

var ErrInsufficientBalance = errors.New("withdrawal exceeds available balance")

// recordSale appends one ledger row for a delivered order item, net of
// commission. The unique index on order_item_id makes a replay a no-op
// conflict rather than a duplicate payout.
func recordSale(tx *gorm.DB, item *models.OrderItem) error {
	var existing models.Transaction
	err := tx.Where("order_item_id = ?", item.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	itemID := int(item.ID)
	net := item.Subtotal.Sub(item.Subtotal.Mul(CommissionRate))
	sale := models.Transaction{
		SellerID:    item.SellerID,
		OrderItemID: &itemID,
		Type:        models.TransactionTypeSale,
		Amount:      net,
		Status:      models.TransactionStatusCompleted,
	}
	return tx.Create(&sale).Error
}

// SellerBalance is completed sales minus every non-failed withdrawal.
func SellerBalance(db *gorm.DB, sellerID int) (decimal.Decimal, error) {
	var transactions []models.Transaction
	if err := db.Where("seller_id = ?", sellerID).Find(&transactions).Error; err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, t := range transactions {
		switch {
		case t.Type == models.TransactionTypeSale && t.Status == models.TransactionStatusCompleted:
			balance = balance.Add(t.Amount)
		case t.Type == models.TransactionTypeWithdrawal && t.Status != models.TransactionStatusFailed:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance, nil
}

// RequestWithdrawal appends a pending withdrawal row when the seller's
// balance covers it.
func RequestWithdrawal(db *gorm.DB, sellerID int, amount decimal.Decimal) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, errors.New("withdrawal amount must be positive")
	}

	var withdrawal models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		balance, err := SellerBalance(tx, sellerID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return ErrInsufficientBalance
		}

		withdrawal = models.Transaction{
			SellerID: sellerID,
			Type:     models.TransactionTypeWithdrawal,
			Amount:   amount,
			Status:   models.TransactionStatusPending,
		}
		return tx.Create(&withdrawal).Error
	})
	return withdrawal, err
}

type WithdrawalInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func CreateWithdrawal(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var input WithdrawalInput
		if err := ctx.ShouldBindJSON(&input); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
			return
		}

		withdrawal, err := RequestWithdrawal(db, ctx.GetInt("user_id"), input.Amount)
		if err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
				return
			}
			log.Println("Withdrawal request error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to request withdrawal")
			return
		}

		sendJSONResponse(ctx, http.StatusCreated, gin.H{"withdrawal": withdrawal})
	}
}

// SettleWithdrawal is the admin action that completes or fails a pending
// withdrawal.
func SettleWithdrawal(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		withdrawalId, err := strconv.Atoi(ctx.Param("withdrawalId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid withdrawal id")
			return
		}

		var body struct {
			Status string `json:"status" binding:"required,oneof=completed failed"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
			return
		}

		result := db.Model(&models.Transaction{}).
			Where("id = ? AND type = ? AND status = ?",
				withdrawalId, models.TransactionTypeWithdrawal, models.TransactionStatusPending).
			Update("status", models.TransactionStatus(body.Status))
		if result.Error != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to settle withdrawal")
			return
		}
		if result.RowsAffected == 0 {
			sendErrorResponse(ctx, http.StatusNotFound, "No pending withdrawal with this id")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Withdrawal settled"})
	}
}

func GetSellerTransactions(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var transactions []models.Transaction
		if err := db.Where("seller_id = ?", ctx.GetInt("user_id")).
			Order("created_at desc").Find(&transactions).Error; err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch transactions")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"transactions": transactions})
	}
}

func GetSellerEarnings(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sellerID := ctx.GetInt("user_id")

		balance, err := SellerBalance(db, sellerID)
		if err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to compute earnings")
			return
		}

		var totalSales decimal.Decimal
		var sales []models.Transaction
		if err := db.Where("seller_id = ? AND type = ?", sellerID, models.TransactionTypeSale).
			Find(&sales).Error; err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to compute earnings")
			return
		}
		for _, sale := range sales {
			totalSales = totalSales.Add(sale.Amount)
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"balance":    balance,
			"totalSales": totalSales,
		})
	}
}

// GetSellerAnalytics aggregates the seller's order items: counts per status
// and gross revenue over delivered items.
func GetSellerAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sellerID := ctx.GetInt("user_id")

		var items []models.OrderItem
		if err := db.Where("seller_id = ?", sellerID).Find(&items).Error; err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch analytics")
			return
		}

		statusCounts := map[models.OrderStatus]int{}
		unitsSold := 0
		revenue := decimal.Zero
		for _, item := range items {
			statusCounts[item.Status]++
			if item.Status == models.OrderStatusDelivered {
				unitsSold += item.Quantity
				revenue = revenue.Add(item.Subtotal)
			}
		}

		var productCount int64
		db.Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&productCount)

		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"productCount": productCount,
			"statusCounts": statusCounts,
			"unitsSold":    unitsSold,
			"revenue":      revenue,
		})
	}
}
