package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
	"github.com/sokoni-app/sokoni-api/middlewares"
	"gorm.io/gorm"
)

func SellerRoutes(server *gin.Engine, db *gorm.DB) {
	seller := server.Group("/seller", middlewares.RequireAuth(), middlewares.RequireSeller())
	{
		seller.GET("/analytics", controllers.GetSellerAnalytics(db))
		seller.GET("/earnings", controllers.GetSellerEarnings(db))
		seller.GET("/transactions", controllers.GetSellerTransactions(db))
		seller.POST("/withdrawals", controllers.CreateWithdrawal(db))
	}

	server.PATCH("/seller/withdrawals/:withdrawalId",
		middlewares.RequireAuth(), middlewares.RequireAdmin(), controllers.SettleWithdrawal(db))
}
