package controllers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertReviewKeepsOneRowPerUserAndProduct(t *testing.T) {
	db := newTestDB(t)
	buyer := seedUser(t, db, models.RoleBuyer, "")
	seller := seedUser(t, db, models.RoleSeller, "")
	product := seedProduct(t, db, int(seller.ID), "10.00", 5)

	first, err := UpsertReview(db, int(buyer.ID), buyer.Username, ReviewInput{
		ProductId: int(product.ID), Rating: 3, Comment: "decent",
	})
	require.NoError(t, err)

	second, err := UpsertReview(db, int(buyer.ID), buyer.Username, ReviewInput{
		ProductId: int(product.ID), Rating: 5, Comment: "grew on me",
	})
	require.NoError(t, err)

	// Same row, updated in place.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)

	var count int64
	db.Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", buyer.ID, product.ID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertReviewRefreshesProductAggregates(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, models.RoleBuyer, "")
	bob := seedUser(t, db, models.RoleBuyer, "")
	seller := seedUser(t, db, models.RoleSeller, "")
	product := seedProduct(t, db, int(seller.ID), "10.00", 5)

	_, err := UpsertReview(db, int(alice.ID), alice.Username, ReviewInput{ProductId: int(product.ID), Rating: 4})
	require.NoError(t, err)
	_, err = UpsertReview(db, int(bob.ID), bob.Username, ReviewInput{ProductId: int(product.ID), Rating: 2})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 2, reloaded.ReviewCount)
	assert.InDelta(t, 3.0, reloaded.Rating, 0.001)

	// Re-rating replaces, it does not add another sample.
	_, err = UpsertReview(db, int(bob.ID), bob.Username, ReviewInput{ProductId: int(product.ID), Rating: 4})
	require.NoError(t, err)

	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 2, reloaded.ReviewCount)
	assert.InDelta(t, 4.0, reloaded.Rating, 0.001)
}

func favoriteRequest(t *testing.T, handler gin.HandlerFunc, userID int, productID int) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/favorites", nil)
	ctx.Params = gin.Params{{Key: "id", Value: strconv.Itoa(productID)}}
	ctx.Set("user_id", userID)
	handler(ctx)
	return w
}

func TestRefavoriteAfterRemove(t *testing.T) {
	db := newTestDB(t)
	buyer := seedUser(t, db, models.RoleBuyer, "")
	seller := seedUser(t, db, models.RoleSeller, "")
	product := seedProduct(t, db, int(seller.ID), "10.00", 5)

	w := favoriteRequest(t, AddFavorite(db), int(buyer.ID), int(product.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	w = favoriteRequest(t, RemoveFavorite(db), int(buyer.ID), int(product.ID))
	require.Equal(t, http.StatusOK, w.Code)

	// Removal frees the pair; favoriting again must insert, not trip the
	// unique index.
	w = favoriteRequest(t, AddFavorite(db), int(buyer.ID), int(product.ID))
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Favorite{}).
		Where("user_id = ? AND product_id = ?", buyer.ID, product.ID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	buyer := seedUser(t, db, models.RoleBuyer, "")
	seller := seedUser(t, db, models.RoleSeller, "")
	product := seedProduct(t, db, int(seller.ID), "10.00", 5)

	w := favoriteRequest(t, AddFavorite(db), int(buyer.ID), int(product.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	w = favoriteRequest(t, AddFavorite(db), int(buyer.ID), int(product.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Favorite{}).Where("user_id = ?", buyer.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertReviewUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	buyer := seedUser(t, db, models.RoleBuyer, "")

	_, err := UpsertReview(db, int(buyer.ID), buyer.Username, ReviewInput{ProductId: 9999, Rating: 5})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
