package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
	"github.com/sokoni-app/sokoni-api/middlewares"
	"github.com/sokoni-app/sokoni-api/payment"
	"gorm.io/gorm"
)

func OrderRoutes(server *gin.Engine, db *gorm.DB, gateway payment.Gateway, httpGateway *payment.HTTPGateway) {
	order := server.Group("/order", middlewares.RequireAuth())
	{
		order.POST("", controllers.CreateOrder(db, gateway))
		order.GET("/mine", controllers.GetOrdersByCustomer(db))
		order.GET("/:orderId", controllers.GetOrderById(db))
		order.POST("/:orderId/pay", controllers.RetryPayment(db, gateway))
		order.POST("/:orderId/cancel", controllers.CancelOrderHandler(db))
		order.PATCH("/:orderId/items", middlewares.RequireSeller(), controllers.UpdateOrderItemStatus(db))
		order.GET("", middlewares.RequireAdmin(), controllers.GetOrders(db))
		order.GET("/undelivered/count", middlewares.RequireAdmin(), controllers.GetUndeliveredOrders(db))
		order.DELETE("/:orderId", middlewares.RequireAdmin(), controllers.DeleteOrder(db))
	}

	// The hosted gateway calls back without a session.
	if httpGateway != nil {
		server.POST("/payment/ipn", controllers.HandlePaymentIPN(db, httpGateway))
		server.GET("/payment/ipn", controllers.HandlePaymentIPN(db, httpGateway))
	}
}
