package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/models"
	"gorm.io/gorm"
)

type ReviewInput struct {
	ProductId int    `json:"productId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
	ImageUrl  string `json:"imageUrl"`
}

// UpsertReview creates or replaces the caller's review for a product. A
// (user, product) pair holds at most one review; resubmitting updates the
// existing row and the product aggregates are recomputed either way.
func UpsertReview(db *gorm.DB, userID int, username string, input ReviewInput) (models.Review, error) {
	var review models.Review

	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, input.ProductId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		err := tx.Where("user_id = ? AND product_id = ?", userID, input.ProductId).First(&review).Error
		switch {
		case err == nil:
			review.Rating = input.Rating
			review.Comment = input.Comment
			review.ImageUrl = input.ImageUrl
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = models.Review{
				UserID:    userID,
				ProductId: input.ProductId,
				Username:  username,
				Rating:    input.Rating,
				Comment:   input.Comment,
				ImageUrl:  input.ImageUrl,
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return refreshProductRating(tx, input.ProductId)
	})

	return review, err
}

func refreshProductRating(tx *gorm.DB, productID int) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating),0) as avg, COUNT(*) as count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"rating":       agg.Avg,
		"review_count": agg.Count,
	}).Error
}

func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var input ReviewInput
		if err := ctx.ShouldBindJSON(&input); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
			return
		}

		review, err := UpsertReview(db, ctx.GetInt("user_id"), ctx.GetString("username"), input)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				sendErrorResponse(ctx, http.StatusNotFound, err.Error())
				return
			}
			log.Println("Review upsert error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to save review")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"review": review})
	}
}

func GetProductReviews(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
			return
		}

		var reviews []models.Review
		if err := db.Where("product_id = ?", productId).Order("created_at desc").Find(&reviews).Error; err != nil {
			log.Println("Review fetch error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch reviews")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"reviews": reviews})
	}
}

// AddFavorite is idempotent: favoriting an already-favorite product is a
// no-op success.
func AddFavorite(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
			return
		}

		userID := ctx.GetInt("user_id")
		var existing models.Favorite
		err = db.Where("user_id = ? AND product_id = ?", userID, productId).First(&existing).Error
		if err == nil {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Already in favorites"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to check favorites")
			return
		}

		favorite := models.Favorite{UserID: userID, ProductId: productId}
		if err := db.Create(&favorite).Error; err != nil {
			log.Println("Favorite create error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add favorite")
			return
		}

		sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Added to favorites"})
	}
}

func RemoveFavorite(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid product ID")
			return
		}

		result := db.Where("user_id = ? AND product_id = ?", ctx.GetInt("user_id"), productId).
			Delete(&models.Favorite{})
		if result.Error != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to remove favorite")
			return
		}
		if result.RowsAffected == 0 {
			sendErrorResponse(ctx, http.StatusNotFound, "Favorite not found")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Removed from favorites"})
	}
}

func GetFavorites(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var favorites []models.Favorite
		if err := db.Where("user_id = ?", ctx.GetInt("user_id")).Find(&favorites).Error; err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch favorites")
			return
		}

		productIds := make([]int, 0, len(favorites))
		for _, f := range favorites {
			productIds = append(productIds, f.ProductId)
		}

		var products []models.Product
		if len(productIds) > 0 {
			if err := db.Preload("Images").Where("id IN ?", productIds).Find(&products).Error; err != nil {
				sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch favorite products")
				return
			}
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"favorites": products})
	}
}
