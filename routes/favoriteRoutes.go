package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/controllers"
	"github.com/sokoni-app/sokoni-api/middlewares"
	"gorm.io/gorm"
)

func FavoriteRoutes(server *gin.Engine, db *gorm.DB) {
	favorites := server.Group("/favorites", middlewares.RequireAuth())
	{
		favorites.GET("", controllers.GetFavorites(db))
		favorites.POST("/:id", controllers.AddFavorite(db))
		favorites.DELETE("/:id", controllers.RemoveFavorite(db))
	}

	server.POST("/reviews", middlewares.RequireAuth(), controllers.CreateReview(db))
}
