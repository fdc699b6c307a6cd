package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sokoni-app/sokoni-api/models"
	"github.com/sokoni-app/sokoni-api/payment"
	"github.com/sokoni-app/sokoni-api/pricing"
	"github.com/sokoni-app/sokoni-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrNoShippingAddress   = errors.New("shipping address is required before placing an order")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrForbiddenTransition = errors.New("status transition is not allowed")
	ErrOrderNotFound       = errors.New("order not found")
)

type PlaceOrderInput struct {
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=cod card mobile"`
}

type addressSnapshot struct {
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func generateOrderNumber() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}

// lockForUpdate takes row locks where the dialect supports them. SQLite has
// no FOR UPDATE; its writes serialize on the database file instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// PlaceOrder creates an order from the user's cart: one order row, one item
// per cart line, stock deducted under row locks, cart cleared — all inside a
// single transaction so a failure leaves nothing behind. A repeated
// idempotency key returns the previously placed order instead of placing a
// second one.
func PlaceOrder(db *gorm.DB, userID int, input PlaceOrderInput, idempotencyKey string) (*models.Order, error) {
	if idempotencyKey != "" {
		var existing models.Order
		err := db.Preload("OrderItems").Where("idempotency_key = ?", idempotencyKey).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.ShippingAddress == "" {
		return nil, ErrNoShippingAddress
	}

	var lines []models.CartItem
	if err := db.Where("user_id = ?", userID).Find(&lines).Error; err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	address, err := json.Marshal(addressSnapshot{
		Fullname: user.Fullname,
		Phone:    user.Phone,
		Address:  user.ShippingAddress,
	})
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		var priceLines []pricing.Line
		var items []models.OrderItem

		for _, line := range lines {
			var product models.Product
			if err := lockForUpdate(tx).First(&product, line.ProductId).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductName)
				}
				return err
			}

			if !product.Active {
				return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			product.Stock -= line.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			subtotal := line.UnitPrice.Mul(decimalFromInt(line.Quantity))
			items = append(items, models.OrderItem{
				ProductId: line.ProductId,
				SellerID:  product.SellerID,
				Name:      product.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Subtotal:  subtotal,
				Status:    models.OrderStatusPending,
			})
			priceLines = append(priceLines, pricing.Line{UnitPrice: line.UnitPrice, Quantity: line.Quantity})
		}

		totals := pricing.Calculate(priceLines)

		order = models.Order{
			OrderNumber:     generateOrderNumber(),
			UserID:          userID,
			Subtotal:        totals.Subtotal,
			Shipping:        totals.Shipping,
			Tax:             totals.Tax,
			Total:           totals.Total,
			PaymentMethod:   input.PaymentMethod,
			PaymentStatus:   models.PaymentStatusPending,
			Status:          models.OrderStatusPending,
			ShippingAddress: address,
			OrderItems:      items,
		}
		if idempotencyKey != "" {
			order.IdempotencyKey = &idempotencyKey
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// ApplyPaymentOutcome finalizes the payment attempt for an order. Cash on
// delivery skips the gateway and confirms immediately with payment left
// pending. An approved electronic charge marks the order paid and confirmed;
// a declined one records the failure and leaves the order pending so the
// buyer can retry.
func ApplyPaymentOutcome(ctx context.Context, db *gorm.DB, gateway payment.Gateway, order *models.Order, email, phone string) (payment.Result, error) {
	if order.PaymentMethod == models.PaymentMethodCOD {
		if err := confirmOrder(db, order, models.PaymentStatusPending, ""); err != nil {
			return payment.Result{}, err
		}
		return payment.Result{Approved: true}, nil
	}

	result, err := gateway.Authorize(ctx, payment.Charge{
		OrderNumber: order.OrderNumber,
		Amount:      order.Total,
		Method:      order.PaymentMethod,
		Email:       email,
		Phone:       phone,
	})
	if err != nil {
		return payment.Result{}, err
	}

	if !result.Approved {
		if err := db.Model(order).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
			return result, err
		}
		order.PaymentStatus = models.PaymentStatusFailed
		return result, nil
	}

	if err := confirmOrder(db, order, models.PaymentStatusPaid, result.Reference); err != nil {
		return result, err
	}
	return result, nil
}

func confirmOrder(db *gorm.DB, order *models.Order, paymentStatus models.PaymentStatus, paymentRef string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":         models.OrderStatusConfirmed,
			"payment_status": paymentStatus,
		}
		if paymentRef != "" {
			updates["payment_ref"] = paymentRef
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusConfirmed).Error; err != nil {
			return err
		}
		order.Status = models.OrderStatusConfirmed
		order.PaymentStatus = paymentStatus
		order.PaymentRef = paymentRef
		return nil
	})
}

// UpdateSellerItemStatus advances every item a seller owns on an order,
// validating the transition per item, then recomputes the order-level rollup.
// Items of other sellers on the same order are untouched. Delivered items
// earn the seller a ledger sale row net of commission.
func UpdateSellerItemStatus(db *gorm.DB, orderID, sellerID int, target models.OrderStatus) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var items []models.OrderItem
		if err := tx.Where("order_id = ? AND seller_id = ?", orderID, sellerID).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrOrderNotFound
		}

		for i := range items {
			if !models.CanTransition(items[i].Status, target) {
				return fmt.Errorf("%w: %s -> %s", ErrForbiddenTransition, items[i].Status, target)
			}
			items[i].Status = target
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
			if target == models.OrderStatusDelivered {
				if err := recordSale(tx, &items[i]); err != nil {
					return err
				}
			}
		}

		return refreshOrderRollup(tx, orderID)
	})
}

func refreshOrderRollup(tx *gorm.DB, orderID int) error {
	var all []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&all).Error; err != nil {
		return err
	}
	return tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", models.RollupStatus(all)).Error
}

// CancelOrder cancels from pending or confirmed only, restores stock, and
// cancels every item. Terminal orders are left alone.
func CancelOrder(db *gorm.DB, orderID int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("OrderItems").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrForbiddenTransition, order.Status, models.OrderStatusCancelled)
		}

		for _, item := range order.OrderItems {
			if item.Status == models.OrderStatusCancelled {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductId).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ?", orderID).
			Update("status", models.OrderStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("status", models.OrderStatusCancelled).Error
	})
}

// CreateOrder places the order and immediately runs the payment attempt.
func CreateOrder(db *gorm.DB, gateway payment.Gateway) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var input PlaceOrderInput
		if err := ctx.ShouldBindJSON(&input); err != nil {
			log.Printf("JSON binding error: %v", err)
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
			return
		}

		userID := ctx.GetInt("user_id")
		order, err := PlaceOrder(db, userID, input, ctx.GetHeader("Idempotency-Key"))
		if err != nil {
			switch {
			case errors.Is(err, ErrCartEmpty), errors.Is(err, ErrNoShippingAddress),
				errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrProductInactive),
				errors.Is(err, ErrProductNotFound):
				sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
			default:
				log.Println("Order placement error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order")
			}
			return
		}

		// A replayed idempotency key can return an order that already moved
		// past pending; do not charge it again.
		if order.Status != models.OrderStatusPending || order.PaymentStatus == models.PaymentStatusPaid {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			log.Println("User lookup error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}

		result, err := ApplyPaymentOutcome(ctx.Request.Context(), db, gateway, order, user.Email, user.Phone)
		if err != nil {
			log.Println("Payment error:", err)
			sendJSONResponse(ctx, http.StatusOK, gin.H{
				"order":   order,
				"message": "Order placed, but the payment attempt failed. Retry payment to complete it.",
			})
			return
		}

		response := gin.H{"order": order}
		if !result.Approved {
			response["message"] = "Payment was declined. Retry payment to complete the order."
		} else {
			if result.RedirectURL != "" {
				response["redirect_url"] = result.RedirectURL
			}
			sendOrderConfirmationEmail(user, order)
		}

		sendJSONResponse(ctx, http.StatusCreated, response)
	}
}

// RetryPayment re-runs the payment attempt for an order whose previous
// attempt was declined.
func RetryPayment(db *gorm.DB, gateway payment.Gateway) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		orderID, err := strconv.Atoi(ctx.Param("orderId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
			return
		}

		userID := ctx.GetInt("user_id")
		var order models.Order
		if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
			return
		}

		if order.Status != models.OrderStatusPending || order.PaymentStatus == models.PaymentStatusPaid {
			sendErrorResponse(ctx, http.StatusBadRequest, "Order is not awaiting payment")
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}

		result, err := ApplyPaymentOutcome(ctx.Request.Context(), db, gateway, &order, user.Email, user.Phone)
		if err != nil {
			log.Println("Payment retry error:", err)
			sendErrorResponse(ctx, http.StatusBadGateway, "Payment attempt failed")
			return
		}

		if !result.Approved {
			sendJSONResponse(ctx, http.StatusOK, gin.H{
				"order":   order,
				"message": "Payment was declined again.",
			})
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
	}
}

// HandlePaymentIPN receives asynchronous status notifications from the
// hosted gateway and reconciles the order's payment status.
func HandlePaymentIPN(db *gorm.DB, gateway *payment.HTTPGateway) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var trackingId string
		if ctx.Request.Method == http.MethodPost {
			var payload struct {
				OrderTrackingId string `json:"OrderTrackingId"`
			}
			if err := ctx.BindJSON(&payload); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
				return
			}
			trackingId = payload.OrderTrackingId
		} else {
			trackingId = ctx.Query("orderTrackingId")
		}

		if trackingId == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
			return
		}

		statusDesc, err := gateway.TransactionStatus(ctx.Request.Context(), trackingId)
		if err != nil {
			log.Println("IPN status check error:", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check payment status"})
			return
		}

		var order models.Order
		if err := db.Where("payment_ref = ?", trackingId).First(&order).Error; err != nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown tracking id"})
			return
		}

		if statusDesc == "Completed" || statusDesc == "COMPLETED" {
			if err := confirmOrder(db, &order, models.PaymentStatusPaid, trackingId); err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
				return
			}
		} else if statusDesc == "Failed" || statusDesc == "FAILED" {
			if err := db.Model(&order).Update("payment_status", models.PaymentStatusFailed).Error; err != nil {
				log.Println("IPN payment status update error:", err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
				return
			}
		}

		ctx.JSON(http.StatusOK, gin.H{
			"orderNotificationType": "IPNCHANGE",
			"orderTrackingId":       trackingId,
			"status":                200,
		})
	}
}

func GetOrders(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var orders []models.Order

		page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
		offset := (page - 1) * limit

		sortOrder := ctx.DefaultQuery("sort", "desc")
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		query := db.Preload("OrderItems")
		if search := ctx.Query("search"); search != "" {
			query = query.Where("order_number LIKE ?", "%"+search+"%")
		}
		if status := ctx.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders)
		if result.Error != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", result.Error)
			return
		}

		var count int64
		countQuery := db.Model(&models.Order{})
		if search := ctx.Query("search"); search != "" {
			countQuery = countQuery.Where("order_number LIKE ?", "%"+search+"%")
		}
		if status := ctx.Query("status"); status != "" {
			countQuery = countQuery.Where("status = ?", status)
		}
		countQuery.Count(&count)

		previousPage := page - 1
		nextPage := page + 1
		totalPages := math.Ceil(float64(count) / float64(limit))

		ctx.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"metadata": gin.H{
				"total":        count,
				"currentPage":  page,
				"limit":        limit,
				"hasPrevPage":  previousPage > 0,
				"hasNextPage":  int(totalPages) > page,
				"previousPage": previousPage,
				"nextPage":     nextPage,
			},
		})
	}
}

func GetOrdersByCustomer(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userId := ctx.GetInt("user_id")

		sortOrder := ctx.DefaultQuery("sort", "desc")
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		var orders []models.Order
		query := db.Preload("OrderItems").Where("user_id = ?", userId)
		if result := query.Order("created_at " + sortOrder).Find(&orders); result.Error != nil {
			log.Println(result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders.")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
	}
}

func GetOrderById(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		orderId, err := strconv.Atoi(ctx.Param("orderId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
			return
		}

		var order models.Order
		if err := db.Preload("OrderItems").First(&order, orderId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
				return
			}
			log.Println(err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order.")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
	}
}

// UpdateOrderItemStatus lets a seller advance their own items on an order.
func UpdateOrderItemStatus(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
			return
		}

		orderId, err := strconv.Atoi(ctx.Param("orderId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
			return
		}

		target, ok := models.ParseOrderStatus(body.Status)
		if !ok {
			sendErrorResponse(ctx, http.StatusBadRequest, ErrInvalidStatus.Error())
			return
		}

		err = UpdateSellerItemStatus(db, orderId, ctx.GetInt("user_id"), target)
		if err != nil {
			switch {
			case errors.Is(err, ErrOrderNotFound):
				sendErrorResponse(ctx, http.StatusNotFound, "No items for this seller on this order")
			case errors.Is(err, ErrForbiddenTransition):
				sendErrorResponse(ctx, http.StatusConflict, err.Error())
			default:
				log.Println("Item status update error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
			}
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
	}
}

// CancelOrderHandler cancels an order on behalf of its buyer or an admin.
func CancelOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		orderId, err := strconv.Atoi(ctx.Param("orderId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
			return
		}

		if ctx.GetString("role") != models.RoleAdmin {
			var order models.Order
			if err := db.Where("id = ? AND user_id = ?", orderId, ctx.GetInt("user_id")).First(&order).Error; err != nil {
				sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
				return
			}
		}

		if err := CancelOrder(db, orderId); err != nil {
			switch {
			case errors.Is(err, ErrOrderNotFound):
				sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
			case errors.Is(err, ErrForbiddenTransition):
				sendErrorResponse(ctx, http.StatusConflict, err.Error())
			default:
				log.Println("Cancel order error:", err)
				sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to cancel order")
			}
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order cancelled."})
	}
}

func DeleteOrder(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		orderId, err := strconv.Atoi(ctx.Param("orderId"))
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse order id.")
			return
		}

		if result := db.Delete(&models.Order{}, orderId); result.Error != nil {
			log.Println(result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete order.")
			return
		}

		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order deleted successfully."})
	}
}

func GetUndeliveredOrders(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var count int64
		result := db.Model(&models.Order{}).
			Where("status NOT IN ?", []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled}).
			Count(&count)
		if result.Error != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count undelivered orders"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"undeliveredOrderCount": count})
	}
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// sendOrderConfirmationEmail is a variable so tests can observe the calls
// without dialing an SMTP server.
var sendOrderConfirmationEmail = func(user models.User, order *models.Order) {
	emailData := utils.EmailData{
		Name:        user.Username,
		Message:     "Thank you for your order! We will notify you as it moves through fulfillment.",
		OrderNumber: order.OrderNumber,
		OrderTotal:  order.Total.StringFixed(2),
	}
	templatePath := filepath.Join("templates", "order_confirmation.html")
	if err := utils.SendEmail(user.Email, "Order Confirmation", emailData, templatePath); err != nil {
		log.Println("Error sending order confirmation email:", err)
	}
}
