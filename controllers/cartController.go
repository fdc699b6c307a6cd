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

var (
	ErrProductNotFound   = errors.New("product does not exist")
	ErrProductInactive   = errors.New("product is not available")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrCartLineNotFound  = errors.New("cart item not found")
)

type CartItemInput struct {
	ProductId int `json:"productId" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

type CartQuantityInput struct {
	Quantity int `json:"quantity"`
}

// AddToCart upserts a cart line for (user, product). Re-adding the same
// product increments the existing line's quantity; the unit price snapshot
// is taken once, when the line is first created.
func AddToCart(db *gorm.DB, userID int, input CartItemInput) (models.CartItem, error) {
	var product models.Product
	if err := db.Preload("Images").First(&product, input.ProductId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CartItem{}, ErrProductNotFound
		}
		return models.CartItem{}, err
	}
	if !product.Active {
		return models.CartItem{}, ErrProductInactive
	}

	var existing models.CartItem
	err := db.Where("user_id = ? AND product_id = ?", userID, input.ProductId).First(&existing).Error
	if err == nil {
		existing.Quantity += input.Quantity
		if err := db.Save(&existing).Error; err != nil {
			return models.CartItem{}, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CartItem{}, err
	}

	imageUrl := ""
	if len(product.Images) > 0 {
		imageUrl = product.Images[0].Url
	}

	line := models.CartItem{
		UserID:          userID,
		ProductId:       input.ProductId,
		ProductName:     product.Name,
		ProductImageUrl: imageUrl,
		UnitPrice:       product.EffectivePrice(),
		Quantity:        input.Quantity,
	}
	if err := db.Create(&line).Error; err != nil {
		return models.CartItem{}, err
	}
	return line, nil
}

// SetCartQuantity updates a line's quantity. A quantity below one removes the
// line; a quantity above the product's current stock is rejected. Returns
// whether the line was removed.
func SetCartQuantity(db *gorm.DB, userID, lineID, quantity int) (bool, error) {
	var line models.CartItem
	if err := db.Where("id = ? AND user_id = ?", lineID, userID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCartLineNotFound
		}
		return false, err
	}

	if quantity < 1 {
		if err := db.Delete(&line).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	var product models.Product
	if err := db.First(&product, line.ProductId).Error; err == nil && quantity > product.Stock {
		return false, ErrInsufficientStock
	}

	line.Quantity = quantity
	if err := db.Save(&line).Error; err != nil {
		return false, err
	}
	return false, nil
}

// RemoveCartLine deletes a line unconditionally.
func RemoveCartLine(db *gorm.DB, userID, lineID int) error {
	result := db.Where("id = ? AND user_id = ?", lineID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

// ListCart returns the user's lines joined against the catalog. A line whose
// product no longer resolves comes back degraded (Available false, no
// current price) instead of being hidden.
func ListCart(db *gorm.DB, userID int) ([]models.CartLineView, error) {
	var lines []models.CartItem
	if err := db.Where("user_id = ?", userID).Order("created_at asc").Find(&lines).Error; err != nil {
		return nil, err
	}

	views := make([]models.CartLineView, 0, len(lines))
	for _, line := range lines {
		view := models.CartLineView{CartItem: line}

		var product models.Product
		err := db.First(&product, line.ProductId).Error
		if err == nil && product.Active {
			price := product.EffectivePrice()
			view.Available = true
			view.CurrentPrice = &price
			view.Stock = product.Stock
			view.ProductName = product.Name
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		views = append(views, view)
	}
	return views, nil
}

func CreateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var input CartItemInput
		if err := ctx.ShouldBindJSON(&input); err != nil {
			log.Println("Bind error:", err)
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
			return
		}

		line, err := AddToCart(db, ctx.GetInt("user_id"), input)
		if err != nil {
			switch {
			case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrProductInactive):
				sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			default:
				log.Println("Add to cart error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to add item to cart")
			}
			return
		}

		sendJSONResponse(ctx, http.StatusCreated, gin.H{
			"message": line.ProductName + " added to cart",
			"id":      line.ID,
			"item":    line,
		})
	}
}

func UpdateCartItemQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lineID, err := strconv.Atoi(ctx.Param("itemId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid cart item id")
			return
		}

		var input CartQuantityInput
		if err := ctx.ShouldBindJSON(&input); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid input")
			return
		}

		removed, err := SetCartQuantity(db, ctx.GetInt("user_id"), lineID, input.Quantity)
		if err != nil {
			switch {
			case errors.Is(err, ErrCartLineNotFound):
				sendErrorResponse(ctx, http.StatusNotFound, err.Error())
			case errors.Is(err, ErrInsufficientStock):
				sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			default:
				log.Println("Update cart quantity error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity.")
			}
			return
		}

		if removed {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item removed"})
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item quantity updated"})
	}
}

func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lineID, err := strconv.Atoi(ctx.Param("itemId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid cart item id")
			return
		}

		if err := RemoveCartLine(db, ctx.GetInt("user_id"), lineID); err != nil {
			if errors.Is(err, ErrCartLineNotFound) {
				sendErrorResponse(ctx, http.StatusNotFound, err.Error())
				return
			}
			log.Println("Delete cart item error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete cart item")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		views, err := ListCart(db, ctx.GetInt("user_id"))
		if err != nil {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch cart")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": views})
	}
}
