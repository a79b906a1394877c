package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/models"
	"gorm.io/gorm"
)

// Owner resolvers for RequireOwnerOrRole. Each reads the resource id from the
// named path parameter and looks up the owning user in the store.

func ProductOwner(param string) OwnerResolver {
	return func(ctx *gin.Context) (uint, error) {
		id, err := paramID(ctx, param)

		if err != nil {
			return 0, err
		}

		var product models.Product

		if err := db.DB.Select("id", "owner_id").First(&product, id).Error; err != nil {
			return 0, err
		}

		if product.OwnerID == nil {
			return 0, nil
		}

		return *product.OwnerID, nil
	}
}

func OrderOwner(param string) OwnerResolver {
	return func(ctx *gin.Context) (uint, error) {
		id, err := paramID(ctx, param)

		if err != nil {
			return 0, err
		}

		var order models.Order

		if err := db.DB.Select("id", "user_id").First(&order, id).Error; err != nil {
			return 0, err
		}

		return order.UserID, nil
	}
}

// OrderItemOwner resolves through the parent order: an item belongs to
// whoever owns the order it is part of.
func OrderItemOwner(param string) OwnerResolver {
	return func(ctx *gin.Context) (uint, error) {
		id, err := paramID(ctx, param)

		if err != nil {
			return 0, err
		}

		var item models.OrderItem

		if err := db.DB.Select("id", "order_id").First(&item, id).Error; err != nil {
			return 0, err
		}

		var order models.Order

		if err := db.DB.Select("id", "user_id").First(&order, item.OrderID).Error; err != nil {
			return 0, err
		}

		return order.UserID, nil
	}
}

func ReviewOwner(param string) OwnerResolver {
	return func(ctx *gin.Context) (uint, error) {
		id, err := paramID(ctx, param)

		if err != nil {
			return 0, err
		}

		var review models.Review

		if err := db.DB.Select("id", "user_id").First(&review, id).Error; err != nil {
			return 0, err
		}

		return review.UserID, nil
	}
}

func paramID(ctx *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)

	if err != nil {
		// Non-numeric ids cannot address any resource.
		return 0, gorm.ErrRecordNotFound
	}

	return uint(id), nil
}
