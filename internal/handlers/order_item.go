package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/inventory"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/types"
	"gorm.io/gorm"
)

type UpdateOrderItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ListOrderItems returns order items filtered by orderId/productId.
// Non-admin callers only ever see items of their own orders.
func ListOrderItems(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	query := db.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id")

	if currentUser.Role != types.RoleAdmin && currentUser.Role != types.RoleModerator {
		query = query.Where("orders.user_id = ?", currentUser.ID)
	}

	if orderID := ctx.Query("orderId"); orderID != "" {
		query = query.Where("order_items.order_id = ?", orderID)
	}

	if productID := ctx.Query("productId"); productID != "" {
		query = query.Where("order_items.product_id = ?", productID)
	}

	var items []models.OrderItem

	if err := query.Preload("Product").Order("order_items.created_at DESC").Find(&items).Error; err != nil {
		log.Printf("Failed to list order items: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve order items")
		return
	}

	response := make([]OrderItemResponse, 0, len(items))

	for i := range items {
		response = append(response, NewOrderItemResponse(&items[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(response), "data": response})
}

func GetOrderItem(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid order item ID")
		return
	}

	var item models.OrderItem

	if err := db.DB.Preload("Product").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Order item not found")
		} else {
			log.Printf("Failed to load order item %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve order item")
		}
		return
	}

	httpx.OK(ctx, NewOrderItemResponse(&item))
}

// UpdateOrderItem replaces the item quantity, adjusting stock by the delta
// and recomputing the parent order total in the same transaction.
func UpdateOrderItem(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid order item ID")
		return
	}

	var req UpdateOrderItemRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Specify a valid quantity")
		return
	}

	var item models.OrderItem

	if err := db.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Order item not found")
		} else {
			log.Printf("Failed to load order item %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update order item")
		}
		return
	}

	delta := req.Quantity - item.Quantity

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := inventory.Adjust(tx, item.ProductID, delta); err != nil {
			return err
		}

		if err := tx.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
			return err
		}

		_, err := inventory.RecomputeOrderTotal(tx, item.OrderID)

		return err
	})

	if txErr != nil {
		respondOrderError(ctx, txErr, "Failed to update order item")
		return
	}

	if err := db.DB.Preload("Product").First(&item, item.ID).Error; err != nil {
		log.Printf("Failed to reload order item %d: %v", item.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to update order item")
		return
	}

	httpx.OKMessage(ctx, "Order item updated successfully", NewOrderItemResponse(&item))
}

// DeleteOrderItem releases the item's stock, removes it and recomputes the
// parent order total.
func DeleteOrderItem(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid order item ID")
		return
	}

	var item models.OrderItem

	if err := db.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Order item not found")
		} else {
			log.Printf("Failed to load order item %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete order item")
		}
		return
	}

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := inventory.Release(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}

		if err := tx.Delete(&item).Error; err != nil {
			return err
		}

		_, err := inventory.RecomputeOrderTotal(tx, item.OrderID)

		return err
	})

	if txErr != nil {
		respondOrderError(ctx, txErr, "Failed to delete order item")
		return
	}

	httpx.OKMessage(ctx, "Order item deleted successfully", gin.H{"id": item.ID})
}
