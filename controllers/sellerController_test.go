package controllers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sokoni-app/sokoni-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedSale(t *testing.T, db *gorm.DB, sellerID int, amount string) {
	t.Helper()
	sale := models.Transaction{
		SellerID: sellerID,
		Type:     models.TransactionTypeSale,
		Amount:   decimal.RequireFromString(amount),
		Status:   models.TransactionStatusCompleted,
	}
	require.NoError(t, db.Create(&sale).Error)
}

func TestSellerBalanceCountsSalesMinusWithdrawals(t *testing.T) {
	db := newTestDB(t)
	seller := seedUser(t, db, models.RoleSeller, "")
	sellerID := int(seller.ID)

	seedSale(t, db, sellerID, "90.00")
	seedSale(t, db, sellerID, "45.00")

	balance, err := SellerBalance(db, sellerID)
	require.NoError(t, err)
	assert.Equal(t, "135.00", balance.StringFixed(2))

	// A pending withdrawal already holds the funds.
	_, err = RequestWithdrawal(db, sellerID, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	balance, err = SellerBalance(db, sellerID)
	require.NoError(t, err)
	assert.Equal(t, "35.00", balance.StringFixed(2))
}

func TestRequestWithdrawalRejectsOverdraw(t *testing.T) {
	db := newTestDB(t)
	seller := seedUser(t, db, models.RoleSeller, "")
	sellerID := int(seller.ID)

	seedSale(t, db, sellerID, "50.00")

	_, err := RequestWithdrawal(db, sellerID, decimal.RequireFromString("50.01"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = RequestWithdrawal(db, sellerID, decimal.RequireFromString("-5.00"))
	assert.Error(t, err)

	// Nothing was written.
	var count int64
	db.Model(&models.Transaction{}).
		Where("seller_id = ? AND type = ?", sellerID, models.TransactionTypeWithdrawal).
		Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestFailedWithdrawalReleasesFunds(t *testing.T) {
	db := newTestDB(t)
	seller := seedUser(t, db, models.RoleSeller, "")
	sellerID := int(seller.ID)

	seedSale(t, db, sellerID, "80.00")

	withdrawal, err := RequestWithdrawal(db, sellerID, decimal.RequireFromString("80.00"))
	require.NoError(t, err)

	balance, err := SellerBalance(db, sellerID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	require.NoError(t, db.Model(&models.Transaction{}).
		Where("id = ?", withdrawal.ID).
		Update("status", models.TransactionStatusFailed).Error)

	balance, err = SellerBalance(db, sellerID)
	require.NoError(t, err)
	assert.Equal(t, "80.00", balance.StringFixed(2))
}
