package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
	"github.com/sokoni-app/sokoni-api/middlewares"
	"gorm.io/gorm"
)

func CartRoutes(server *gin.Engine, db *gorm.DB) {
	cart := server.Group("/cart", middlewares.RequireAuth())
	{
		cart.GET("", controllers.GetCart(db))
		cart.POST("", controllers.CreateCartItem(db))
		cart.PATCH("/:itemId", controllers.UpdateCartItemQuantity(db))
		cart.DELETE("/:itemId", controllers.DeleteCartItem(db))
	}
}
