package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/internal/handlers"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/storage"
	"github.com/shoply-dev/shoply/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/images", storage.BaseDir())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.GET("/reset-password/:token", handlers.ValidateResetToken)
			auth.POST("/reset-password", handlers.ResetPassword)
			auth.GET("/activate/:token", handlers.ActivateAccount)

			auth.GET("/me", middleware.Authenticate(), handlers.Me)
			auth.PUT("/profile", middleware.Authenticate(), handlers.UpdateProfile)
			auth.PUT("/change-password", middleware.Authenticate(), handlers.ChangePassword)
			auth.DELETE("/avatar", middleware.Authenticate(), handlers.DeleteAvatar)
		}

		products := api.Group("/products")
		{
			products.GET("", handlers.ListProducts)
			products.GET("/:id", handlers.GetProduct)

			products.POST("",
				middleware.Authenticate(),
				middleware.RequireRole(types.RoleSeller, types.RoleModerator, types.RoleAdmin),
				middleware.RequirePermission("products:create"),
				handlers.CreateProduct)

			ownerOrStaff := middleware.RequireOwnerOrRole(middleware.ProductOwner("id"), types.RoleModerator, types.RoleAdmin)

			products.PUT("/:id", middleware.Authenticate(), ownerOrStaff, handlers.UpdateProduct)
			products.DELETE("/:id", middleware.Authenticate(), ownerOrStaff, handlers.DeleteProduct)
			products.POST("/:id/image", middleware.Authenticate(), ownerOrStaff, handlers.UploadProductImage)
			products.POST("/:id/images", middleware.Authenticate(), ownerOrStaff, handlers.UploadProductImages)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", handlers.ListCategories)
			categories.GET("/:id", handlers.GetCategory)

			staff := categories.Group("",
				middleware.Authenticate(),
				middleware.RequireRole(types.RoleModerator, types.RoleAdmin))
			{
				staff.POST("", handlers.CreateCategory)
				staff.PUT("/:id", handlers.UpdateCategory)
				staff.DELETE("/:id", handlers.DeleteCategory)
				staff.POST("/:id/image", handlers.UploadCategoryImage)
			}
		}

		reviews := api.Group("/reviews")
		{
			reviews.GET("", handlers.ListReviews)
			reviews.GET("/:id", handlers.GetReview)

			reviews.POST("",
				middleware.Authenticate(),
				middleware.RequirePermission("reviews:create"),
				handlers.CreateReview)

			ownerOrAdmin := middleware.RequireOwnerOrRole(middleware.ReviewOwner("id"), types.RoleAdmin)

			reviews.PUT("/:id", middleware.Authenticate(), ownerOrAdmin, handlers.UpdateReview)
			reviews.DELETE("/:id", middleware.Authenticate(), ownerOrAdmin, handlers.DeleteReview)
		}

		orders := api.Group("/orders", middleware.Authenticate())
		{
			orders.POST("",
				middleware.RequirePermission("orders:create"),
				handlers.CreateOrder)

			orders.GET("",
				middleware.RequireRole(types.RoleModerator, types.RoleAdmin),
				middleware.RequirePermission("orders:read:any"),
				handlers.ListOrders)

			orders.GET("/my", handlers.MyOrders)

			orders.GET("/:id",
				middleware.RequireOwnerOrRole(middleware.OrderOwner("id"), types.RoleModerator, types.RoleAdmin),
				handlers.GetOrder)

			orders.PUT("/:id/status",
				middleware.RequireRole(types.RoleModerator, types.RoleAdmin),
				middleware.RequirePermission("orders:update:any"),
				handlers.UpdateOrderStatus)

			orders.DELETE("/:id",
				middleware.RequireRole(types.RoleAdmin),
				middleware.RequirePermission("orders:delete"),
				handlers.DeleteOrder)
		}

		orderItems := api.Group("/order-items", middleware.Authenticate())
		{
			orderItems.GET("", handlers.ListOrderItems)

			ownerOrAdmin := middleware.RequireOwnerOrRole(middleware.OrderItemOwner("id"), types.RoleAdmin)

			orderItems.GET("/:id", ownerOrAdmin, handlers.GetOrderItem)
			orderItems.PUT("/:id", ownerOrAdmin, handlers.UpdateOrderItem)
			orderItems.DELETE("/:id", ownerOrAdmin, handlers.DeleteOrderItem)
		}

		users := api.Group("/users", middleware.Authenticate())
		{
			users.GET("",
				middleware.RequireRole(types.RoleModerator, types.RoleAdmin),
				middleware.RequirePermission("users:read"),
				handlers.ListUsers)

			users.GET("/:id",
				middleware.RequireRole(types.RoleModerator, types.RoleAdmin),
				middleware.RequirePermission("users:read"),
				handlers.GetUser)

			admin := users.Group("", middleware.RequireRole(types.RoleAdmin))
			{
				admin.PUT("/:id", handlers.UpdateUser)
				admin.DELETE("/:id", handlers.DeactivateUser)
				admin.PATCH("/:id/role", handlers.UpdateUserRole)
				admin.GET("/:id/permissions", handlers.GetUserPermissions)
			}
		}

		perms := api.Group("/permissions", middleware.Authenticate())
		{
			perms.GET("/me", handlers.MyPermissions)
			perms.GET("", middleware.RequireRole(types.RoleAdmin), handlers.AllRolePermissions)
			perms.POST("/check", handlers.CheckPermission)
		}
	}

	return r
}
