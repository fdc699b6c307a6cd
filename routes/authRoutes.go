package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
	"github.com/sokoni-app/sokoni-api/myid"
	"gorm.io/gorm"
)

func AuthRoutes(server *gin.Engine, db *gorm.DB, myidClient *myid.Client) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", controllers.Signup(db))
		auth.POST("/login", controllers.Login(db))
		auth.POST("/verify-email/:activationToken", controllers.ActivateAccount(db))
		auth.POST("/forgot-password", controllers.SendPasswordResetLink(db))
		auth.POST("/reset-password/:resetToken", controllers.ResetPassword(db))
		auth.POST("/myid/initiate", controllers.InitiateMyIDLogin(myidClient))
		auth.GET("/myid/status/:orderId", controllers.MyIDLoginStatus(db, myidClient))
	}
}
