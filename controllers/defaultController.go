package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Sokoni API ❤️. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account
- POST "/auth/login" - Access user account
- POST "/auth/verify-email/:activationToken" - Activate user account
- POST "/auth/forgot-password" - Request password reset
- POST "/auth/reset-password/:resetToken" - Reset user password
- POST "/auth/myid/initiate" - Start QR login
- GET "/auth/myid/status/:orderId" - Poll QR login status

PRODUCT
- GET "/product" - List active products
- GET "/product/:id" - Get product by ID
- GET "/product/:id/reviews" - List product reviews
- POST "/product" - Create product (seller)
- PUT "/product/:id" - Update product (seller)
- POST "/product-images" - Upload product images (seller)
- PATCH "/product/:id/active" - Moderate product (admin)
- DELETE "/product/:id" - Delete product (admin)

CART
- GET "/cart" - Get my cart
- POST "/cart" - Add item to cart
- PATCH "/cart/:itemId" - Change item quantity
- DELETE "/cart/:itemId" - Remove item

ORDER
- POST "/order" - Place order from cart
- POST "/order/:orderId/pay" - Retry payment
- GET "/order/mine" - My orders
- GET "/order/:orderId" - Get order by ID
- POST "/order/:orderId/cancel" - Cancel order
- PATCH "/order/:orderId/items" - Update my items' status (seller)
- GET "/order" - All orders (admin)
- DELETE "/order/:orderId" - Delete order (admin)

FAVORITES
- GET "/favorites" - My favorites
- POST "/favorites/:id" - Add favorite
- DELETE "/favorites/:id" - Remove favorite

SELLER
- GET "/seller/analytics" - Sales analytics
- GET "/seller/earnings" - Balance and totals
- GET "/seller/transactions" - Ledger rows
- POST "/seller/withdrawals" - Request withdrawal
- PATCH "/seller/withdrawals/:withdrawalId" - Settle withdrawal (admin)`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
