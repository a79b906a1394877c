package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/inventory"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/services"
	"github.com/shoply-dev/shoply/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderLineRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" binding:"required"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type UpdateOrderStatusRequest struct {
	Status types.OrderStatus `json:"status" binding:"required"`
}

// allowedTransitions is the enforced order state machine. Delivered and
// cancelled are terminal; setting the current status again is a no-op.
var allowedTransitions = map[types.OrderStatus][]types.OrderStatus{
	types.OrderPending:    {types.OrderProcessing, types.OrderCancelled},
	types.OrderProcessing: {types.OrderShipped, types.OrderCancelled},
	types.OrderShipped:    {types.OrderDelivered},
	types.OrderDelivered:  {},
	types.OrderCancelled:  {},
}

// CreateOrder validates every line, reserves stock and persists the order
// plus its items in one transaction, so a failing line rolls back every
// earlier reservation.
func CreateOrder(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateOrderRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Add items and a shipping address to the order")
		return
	}

	method := types.PaymentMethod(req.PaymentMethod)

	switch method {
	case "":
		method = types.PaymentCard
	case types.PaymentCard, types.PaymentCash, types.PaymentPaypal:
	default:
		httpx.Error(ctx, http.StatusBadRequest, "Unknown payment method")
		return
	}

	var orderID uint

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		order := models.Order{
			UserID:          currentUser.ID,
			Date:            time.Now(),
			Amount:          decimal.Zero,
			Status:          types.OrderPending,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   method,
			PaymentStatus:   types.PaymentPending,
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		total := decimal.Zero

		for _, line := range req.Items {
			var product models.Product

			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", line.ProductID, inventory.ErrProductNotFound)
				}
				return err
			}

			if err := inventory.Reserve(tx, product.ID, line.Quantity); err != nil {
				return err
			}

			item := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				Quantity:    line.Quantity,
				PriceAtTime: product.Price,
			}

			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			total = total.Add(item.LineTotal())
		}

		if err := tx.Model(&order).UpdateColumn("amount", total).Error; err != nil {
			return err
		}

		orderID = order.ID

		return nil
	})

	if txErr != nil {
		respondOrderError(ctx, txErr, "Failed to create order")
		return
	}

	order, err := loadOrder(orderID)

	if err != nil {
		log.Printf("Failed to load created order %d: %v", orderID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to create order")
		return
	}

	services.SendOrderConfirmation(currentUser.Email, order)

	httpx.Created(ctx, "Order created successfully", NewOrderResponse(order))
}

// ListOrders returns all orders for moderators and admins, with optional
// userId, status and date-range filters. Everyone else is forced onto their
// own orders regardless of the filters.
func ListOrders(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, limit, offset := pagination(ctx)

	query := db.DB.Model(&models.Order{})

	if currentUser.Role == types.RoleAdmin || currentUser.Role == types.RoleModerator {
		if userID := ctx.Query("userId"); userID != "" {
			query = query.Where("user_id = ?", userID)
		}
	} else {
		query = query.Where("user_id = ?", currentUser.ID)
	}

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if startDate, ok := parseDate(ctx.Query("startDate")); ok {
		query = query.Where("date >= ?", startDate)
	}

	if endDate, dateOnly, ok := parseDateBound(ctx.Query("endDate")); ok {
		// A bare calendar date means the whole day, not its midnight.
		if dateOnly {
			endDate = endDate.AddDate(0, 0, 1)
			query = query.Where("date < ?", endDate)
		} else {
			query = query.Where("date <= ?", endDate)
		}
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count orders: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	var orders []models.Order

	if err := query.Preload("User").Preload("Items.Product").
		Order("date DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		log.Printf("Failed to list orders: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	response := make([]OrderResponse, 0, len(orders))

	for i := range orders {
		response = append(response, NewOrderResponse(&orders[i]))
	}

	httpx.List(ctx, response, httpx.Paginate(page, limit, total))
}

// MyOrders lists the caller's own orders with an optional status filter.
func MyOrders(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	page, limit, offset := pagination(ctx)

	query := db.DB.Model(&models.Order{}).Where("user_id = ?", currentUser.ID)

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count orders for user %d: %v", currentUser.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	var orders []models.Order

	if err := query.Preload("Items.Product").
		Order("date DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		log.Printf("Failed to list orders for user %d: %v", currentUser.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	response := make([]OrderResponse, 0, len(orders))

	for i := range orders {
		response = append(response, NewOrderResponse(&orders[i]))
	}

	httpx.List(ctx, response, httpx.Paginate(page, limit, total))
}

// GetOrder returns a single order. Ownership is enforced by the
// RequireOwnerOrRole guard on the route.
func GetOrder(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := loadOrder(id)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Printf("Failed to load order %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve order")
		}
		return
	}

	httpx.OK(ctx, NewOrderResponse(order))
}

// UpdateOrderStatus applies the state machine. Transitioning into cancelled
// from a non-cancelled state restores stock for every item, exactly once.
func UpdateOrderStatus(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Specify the new order status")
		return
	}

	if !types.ValidOrderStatus(req.Status) {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid status. Allowed values: pending, processing, shipped, delivered, cancelled")
		return
	}

	var order models.Order

	if err := db.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Printf("Failed to load order %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	if req.Status != order.Status {
		if !slices.Contains(allowedTransitions[order.Status], req.Status) {
			httpx.Error(ctx, http.StatusBadRequest, fmt.Sprintf("Cannot change order status from %s to %s", order.Status, req.Status))
			return
		}

		txErr := db.DB.Transaction(func(tx *gorm.DB) error {
			if req.Status == types.OrderCancelled {
				if err := inventory.ReleaseOrderItems(tx, order.ID); err != nil {
					return err
				}
			}

			return tx.Model(&order).Update("status", req.Status).Error
		})

		if txErr != nil {
			log.Printf("Failed to update status of order %d: %v", order.ID, txErr)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update order status")
			return
		}
	}

	updated, err := loadOrder(order.ID)

	if err != nil {
		log.Printf("Failed to reload order %d: %v", order.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	httpx.OKMessage(ctx, "Order status updated successfully", NewOrderResponse(updated))
}

// DeleteOrder restores stock for every item, then removes the order and its
// items.
func DeleteOrder(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var order models.Order

	if err := db.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Printf("Failed to load order %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete order")
		}
		return
	}

	txErr := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := inventory.ReleaseOrderItems(tx, order.ID); err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&order).Error
	})

	if txErr != nil {
		log.Printf("Failed to delete order %d: %v", order.ID, txErr)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete order")
		return
	}

	httpx.OKMessage(ctx, "Order deleted successfully", gin.H{"id": order.ID})
}

func loadOrder(id uint) (*models.Order, error) {
	var order models.Order

	err := db.DB.Preload("User").Preload("Items.Product").First(&order, id).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func respondOrderError(ctx *gin.Context, err error, fallback string) {
	var insufficient *inventory.InsufficientStockError

	if errors.As(err, &insufficient) {
		httpx.Error(ctx, http.StatusBadRequest, fmt.Sprintf("Insufficient stock for %q. Available: %d", insufficient.ProductName, insufficient.Available))
		return
	}

	if errors.Is(err, inventory.ErrProductNotFound) {
		httpx.Error(ctx, http.StatusNotFound, "Product not found")
		return
	}

	log.Printf("%s: %v", fallback, err)
	httpx.Error(ctx, http.StatusInternalServerError, fallback)
}

func parseDate(value string) (time.Time, bool) {
	t, _, ok := parseDateBound(value)
	return t, ok
}

// parseDateBound reports whether the value carried only a calendar date, so
// callers using it as an upper bound can cover the whole day.
func parseDateBound(value string) (time.Time, bool, bool) {
	if value == "" {
		return time.Time{}, false, false
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, true
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true, true
	}

	// Unix seconds as a last resort.
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0), false, true
	}

	return time.Time{}, false, false
}
