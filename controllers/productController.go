package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/models"
	"gorm.io/gorm"
)

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

// CreateProduct registers a product under the calling seller. The seller
// reference and display name are stamped server-side, never trusted from the
// request body.
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var product models.Product
		if err := ctx.ShouldBindJSON(&product); err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		if !product.HasValidDiscount() {
			respondWithError(ctx, http.StatusBadRequest, "Discount price must be below the list price", nil)
			return
		}
		if product.Stock < 0 {
			respondWithError(ctx, http.StatusBadRequest, "Stock cannot be negative", nil)
			return
		}

		sellerID := ctx.GetInt("user_id")
		var seller models.User
		if err := db.First(&seller, sellerID).Error; err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to resolve seller", err)
			return
		}

		product.SellerID = sellerID
		product.SellerName = seller.Fullname
		product.Active = true
		if product.Sku == "" {
			product.Sku = fmt.Sprintf("SKU-%d-%d", sellerID, time.Now().UnixNano())
		}

		if err := db.Create(&product).Error; err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to create product", err)
			return
		}

		ctx.JSON(http.StatusCreated, product)
	}
}

// UpdateProduct lets the owning seller change price, discount, stock and
// descriptive fields. Admins may edit any product.
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
			return
		}

		var product models.Product
		if err := db.First(&product, productId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			} else {
				respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch product", err)
			}
			return
		}

		if ctx.GetString("role") != models.RoleAdmin && product.SellerID != ctx.GetInt("user_id") {
			respondWithError(ctx, http.StatusForbidden, "You do not own this product", nil)
			return
		}

		var updates models.Product
		if err := ctx.ShouldBindJSON(&updates); err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		product.Name = updates.Name
		product.Description = updates.Description
		product.Category = updates.Category
		product.Brand = updates.Brand
		product.ProductType = updates.ProductType
		product.Price = updates.Price
		product.DiscountPrice = updates.DiscountPrice
		product.Stock = updates.Stock

		if !product.HasValidDiscount() {
			respondWithError(ctx, http.StatusBadRequest, "Discount price must be below the list price", nil)
			return
		}
		if product.Stock < 0 {
			respondWithError(ctx, http.StatusBadRequest, "Stock cannot be negative", nil)
			return
		}

		if err := db.Save(&product).Error; err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to update product", err)
			return
		}

		ctx.JSON(http.StatusOK, product)
	}
}

// SetProductActive is the admin moderation switch: products are deactivated
// rather than deleted in normal flows.
func SetProductActive(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
			return
		}

		var body struct {
			Active *bool `json:"active" binding:"required"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		result := db.Model(&models.Product{}).Where("id = ?", productId).Update("active", *body.Active)
		if result.Error != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to update product", result.Error)
			return
		}
		if result.RowsAffected == 0 {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"message": "Product updated"})
	}
}

// DeleteProduct is the admin hard-delete path.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
			return
		}

		if result := db.Delete(&models.Product{}, productId); result.Error != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to delete product", result.Error)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// getAWSUploader returns a configured AWS S3 uploader
func getAWSUploader(ctx context.Context) (*manager.Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return manager.NewUploader(client), nil
}

func UploadProductImages(db *gorm.DB, bucket string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		form, err := ctx.MultipartForm()
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
			return
		}

		files := form.File["images"]
		if len(files) == 0 {
			respondWithError(ctx, http.StatusBadRequest, "No files uploaded", nil)
			return
		}

		productIdStr := ctx.PostForm("productId")
		if productIdStr == "" {
			respondWithError(ctx, http.StatusBadRequest, "Missing productId", nil)
			return
		}

		productId, err := strconv.Atoi(productIdStr)
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid productId", err)
			return
		}

		var product models.Product
		if err := db.First(&product, productId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			} else {
				respondWithError(ctx, http.StatusInternalServerError, "Failed to validate product", err)
			}
			return
		}

		if ctx.GetString("role") != models.RoleAdmin && product.SellerID != ctx.GetInt("user_id") {
			respondWithError(ctx, http.StatusForbidden, "You do not own this product", nil)
			return
		}

		uploader, err := getAWSUploader(ctx.Request.Context())
		if err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to configure AWS", err)
			return
		}

		var uploadedUrls []string
		var failedUploads []string

		for _, file := range files {
			f, openErr := file.Open()
			if openErr != nil {
				log.Printf("Error opening file %s: %v", file.Filename, openErr)
				failedUploads = append(failedUploads, file.Filename)
				continue
			}

			// Unique key so concurrent uploads never overwrite each other
			uniqueFilename := fmt.Sprintf("%d-%s-%s", productId, time.Now().Format("20060102150405"), file.Filename)

			result, uploadErr := uploader.Upload(ctx.Request.Context(), &s3.PutObjectInput{
				Bucket:      aws.String(bucket),
				Key:         aws.String(uniqueFilename),
				Body:        f,
				ACL:         "public-read",
				ContentType: aws.String(file.Header.Get("Content-Type")),
			})
			f.Close()

			if uploadErr != nil {
				log.Printf("Error uploading file %s: %v", file.Filename, uploadErr)
				failedUploads = append(failedUploads, file.Filename)
				continue
			}

			uploadedUrls = append(uploadedUrls, result.Location)

			productImage := models.ProductImage{
				Url:       result.Location,
				ProductID: productId,
			}
			if err := db.Create(&productImage).Error; err != nil {
				// The object is already in the bucket; keep going and log it.
				log.Printf("Error saving image to database: %v", err)
			}
		}

		response := gin.H{
			"message": "Files processed",
			"urls":    uploadedUrls,
		}
		if len(failedUploads) > 0 {
			response["failed"] = failedUploads
		}

		ctx.JSON(http.StatusOK, response)
	}
}

// GetProducts is the public catalog listing: active products only, paginated,
// searchable by name, filterable by category and seller.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var products []models.Product

		page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "12"))
		offset := (page - 1) * limit

		query := db.Preload("Images").Where("active = ?", true)
		countQuery := db.Model(&models.Product{}).Where("active = ?", true)

		if search := ctx.Query("search"); search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
			countQuery = countQuery.Where("name LIKE ?", "%"+search+"%")
		}
		if category := ctx.Query("category"); category != "" {
			query = query.Where("category = ?", category)
			countQuery = countQuery.Where("category = ?", category)
		}
		if sellerId := ctx.Query("sellerId"); sellerId != "" {
			query = query.Where("seller_id = ?", sellerId)
			countQuery = countQuery.Where("seller_id = ?", sellerId)
		}

		result := query.Limit(limit).Offset(offset).Find(&products)
		if result.Error != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch products", result.Error)
			return
		}

		var count int64
		countQuery.Count(&count)

		ctx.JSON(http.StatusOK, gin.H{
			"products": products,
			"metadata": gin.H{
				"total": count,
				"page":  page,
				"limit": limit,
			},
		})
	}
}

func GetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		productId, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			respondWithError(ctx, http.StatusBadRequest, "Invalid product ID", err)
			return
		}

		var product models.Product
		result := db.Preload("Images").First(&product, productId)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			} else {
				respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve product", result.Error)
			}
			return
		}

		ctx.JSON(http.StatusOK, product)
	}
}
