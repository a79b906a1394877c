// Package inventory keeps product stock consistent with the set of active
// order items. All writes are single conditional statements so concurrent
// reservations against the same product cannot lose updates; callers compose
// them inside a transaction when several lines must succeed or fail together.
package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/shoply-dev/shoply/internal/models"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a reservation that exceeds availability.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// Reserve decrements the product's stock by quantity. The decrement only
// applies when the remaining stock covers the request; otherwise the row is
// left untouched and an InsufficientStockError (or ErrProductNotFound) is
// returned.
func Reserve(tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var product models.Product

		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		return &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.StockQuantity,
		}
	}

	return nil
}

// Release returns quantity units of the product to stock.
func Release(tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Adjust applies a quantity delta: positive deltas reserve additional stock,
// negative deltas release it, zero is a no-op.
func Adjust(tx *gorm.DB, productID uint, delta int) error {
	switch {
	case delta > 0:
		return Reserve(tx, productID, delta)
	case delta < 0:
		return Release(tx, productID, -delta)
	}

	return nil
}

// ReleaseOrderItems restores stock for every item of the order. Used on
// cancellation and deletion.
func ReleaseOrderItems(tx *gorm.DB, orderID uint) error {
	var items []models.OrderItem

	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		if err := Release(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}

// RecomputeOrderTotal rewrites the order's amount as the sum of its line
// totals and returns the new value.
func RecomputeOrderTotal(tx *gorm.DB, orderID uint) (decimal.Decimal, error) {
	var items []models.OrderItem

	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero

	for i := range items {
		total = total.Add(items[i].LineTotal())
	}

	res := tx.Model(&models.Order{}).Where("id = ?", orderID).UpdateColumn("amount", total)

	if res.Error != nil {
		return decimal.Zero, res.Error
	}

	return total, nil
}
