package initializers

import (
	"log"

	"github.com/sokoni-app/sokoni-api/models"
	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductImage{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Favorite{},
		&models.Transaction{},
	)
	if err != nil {
		return err
	}
	log.Println("Database synced successfully.")
	return nil
}
