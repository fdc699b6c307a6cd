package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
	"github.com/sokoni-app/sokoni-api/middlewares"
	"gorm.io/gorm"
)

func ProductRoutes(server *gin.Engine, db *gorm.DB, imageBucket string) {
	server.GET("/product", controllers.GetProducts(db))
	server.GET("/product/:id", controllers.GetProduct(db))
	server.GET("/product/:id/reviews", controllers.GetProductReviews(db))

	seller := server.Group("/", middlewares.RequireAuth(), middlewares.RequireSeller())
	{
		seller.POST("/product", controllers.CreateProduct(db))
		seller.PUT("/product/:id", controllers.UpdateProduct(db))
		seller.POST("/product-images", controllers.UploadProductImages(db, imageBucket))
	}

	admin := server.Group("/", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.PATCH("/product/:id/active", controllers.SetProductActive(db))
		admin.DELETE("/product/:id", controllers.DeleteProduct(db))
	}
}
