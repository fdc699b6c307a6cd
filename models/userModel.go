package models

import "gorm.io/gorm"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type User struct {
	gorm.Model
	Fullname               string `json:"fullname"`
	Username               string `json:"username"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	Password               string `json:"password"`
	Role                   string `json:"role"`
	ShippingAddress        string `json:"shippingAddress"`
	AccountActivated       bool   `json:"accountActivated"`
	AccountActivationToken string `json:"-"`
	PasswordResetToken     string `json:"-"`
}

type LoginData struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}
