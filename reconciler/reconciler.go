// Package reconciler sweeps orders that never completed payment. Placement
// and payment are separate steps, so an abandoned checkout leaves a pending
// unpaid order holding reserved stock; the sweep cancels those past a cutoff
// and puts the stock back.
package reconciler

import (
	"context"
	"log"
	"time"

	"github.com/sokoni-app/sokoni-api/models"
	"gorm.io/gorm"
)

type Reconciler struct {
	DB       *gorm.DB
	MaxAge   time.Duration
	Interval time.Duration
}

func New(db *gorm.DB, maxAge, interval time.Duration) *Reconciler {
	return &Reconciler{DB: db, MaxAge: maxAge, Interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cancelled, err := r.Sweep()
			if err != nil {
				log.Println("Reconciler sweep error:", err)
			} else if cancelled > 0 {
				log.Printf("Reconciler cancelled %d stale unpaid orders", cancelled)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Sweep cancels every order still pending and unpaid past the cutoff,
// restoring the stock its items reserved. Returns how many orders were
// cancelled.
func (r *Reconciler) Sweep() (int, error) {
	cutoff := time.Now().Add(-r.MaxAge)

	var stale []models.Order
	err := r.DB.Preload("OrderItems").
		Where("status = ? AND payment_status <> ? AND created_at < ?",
			models.OrderStatusPending, models.PaymentStatusPaid, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, order := range stale {
		err := r.DB.Transaction(func(tx *gorm.DB) error {
			for _, item := range order.OrderItems {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductId).
					Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ?", order.ID).
				Update("status", models.OrderStatusCancelled).Error; err != nil {
				return err
			}
			return tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Update("status", models.OrderStatusCancelled).Error
		})
		if err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}
