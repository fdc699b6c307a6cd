package controllers

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sokoni-app/sokoni-api/initializers"
	"github.com/sokoni-app/sokoni-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, initializers.SyncDatabase(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role, address string) models.User {
	t.Helper()

	user := models.User{
		Fullname:         "Test " + role,
		Username:         fmt.Sprintf("%s-%s", role, t.Name()),
		Email:            fmt.Sprintf("%s-%s@example.com", role, t.Name()),
		Phone:            "0700000000",
		Role:             role,
		ShippingAddress:  address,
		AccountActivated: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID int, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Sku:      fmt.Sprintf("SKU-%d-%d", sellerID, time.Now().UnixNano()),
		Name:     fmt.Sprintf("product-%d", stock),
		Category: "electronics",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Active:   true,
		SellerID: sellerID,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}
