package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
}
