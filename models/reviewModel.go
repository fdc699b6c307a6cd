package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is unique per (user, product); a second submission updates the
// existing row instead of creating a duplicate.
type Review struct {
	gorm.Model
	UserID    int    `json:"userId" gorm:"index;uniqueIndex:idx_review_user_product"`
	ProductId int    `json:"productId" gorm:"index;uniqueIndex:idx_review_user_product"`
	Username  string `json:"username"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
	ImageUrl  string `json:"imageUrl"`
}

// Favorite is a bare (user, product) membership pair. Hard-deleted on
// removal so the pair can be favorited again.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    int       `json:"userId" gorm:"index;uniqueIndex:idx_favorite_user_product"`
	ProductId int       `json:"productId" gorm:"uniqueIndex:idx_favorite_user_product"`
}
