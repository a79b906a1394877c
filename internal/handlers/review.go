package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/models"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Text      string `json:"text" binding:"required,min=10,max=2000"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
}

type UpdateReviewRequest struct {
	Text   *string `json:"text" binding:"omitempty,min=10,max=2000"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

func ListReviews(ctx *gin.Context) {
	page, limit, offset := pagination(ctx)

	query := db.DB.Model(&models.Review{})

	if productID := ctx.Query("productId"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}

	if userID := ctx.Query("userId"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	if minRating := ctx.Query("minRating"); minRating != "" {
		if v, err := strconv.Atoi(minRating); err == nil {
			query = query.Where("rating >= ?", v)
		}
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count reviews: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	var reviews []models.Review

	if err := query.Preload("Product").Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		log.Printf("Failed to list reviews: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))

	for i := range reviews {
		response = append(response, NewReviewResponse(&reviews[i]))
	}

	httpx.List(ctx, response, httpx.Paginate(page, limit, total))
}

func GetReview(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var review models.Review

	if err := db.DB.Preload("Product").Preload("User").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Review not found")
		} else {
			log.Printf("Failed to load review %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve review")
		}
		return
	}

	httpx.OK(ctx, NewReviewResponse(&review))
}

// CreateReview inserts a review after verifying the product exists and the
// caller has not reviewed it already.
func CreateReview(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateReviewRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Specify the product, review text and rating")
		return
	}

	var product models.Product

	if err := db.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", req.ProductID, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to create review")
		}
		return
	}

	var existing models.Review

	err = db.DB.Where("product_id = ? AND user_id = ?", req.ProductID, currentUser.ID).First(&existing).Error

	if err == nil {
		httpx.Error(ctx, http.StatusBadRequest, "You have already reviewed this product")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check existing review: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to create review")
		return
	}

	review := models.Review{
		ProductID: req.ProductID,
		UserID:    currentUser.ID,
		Text:      req.Text,
		Rating:    req.Rating,
	}

	if err := db.DB.Create(&review).Error; err != nil {
		log.Printf("Failed to create review: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to create review")
		return
	}

	httpx.Created(ctx, "Review created successfully", NewReviewResponse(&review))
}

// UpdateReview edits text or rating. Authorship is enforced by the
// RequireOwnerOrRole guard on the route.
func UpdateReview(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var review models.Review

	if err := db.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Review not found")
		} else {
			log.Printf("Failed to load review %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update review")
		}
		return
	}

	var req UpdateReviewRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	updates := make(map[string]interface{})

	if req.Text != nil {
		updates["text"] = *req.Text
	}

	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	if len(updates) == 0 {
		httpx.Error(ctx, http.StatusBadRequest, "No valid fields to update")
		return
	}

	if err := db.DB.Model(&review).Updates(updates).Error; err != nil {
		log.Printf("Failed to update review %d: %v", review.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to update review")
		return
	}

	httpx.OKMessage(ctx, "Review updated successfully", NewReviewResponse(&review))
}

// DeleteReview removes the review permanently so the author can review the
// product again later.
func DeleteReview(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid review ID")
		return
	}

	var review models.Review

	if err := db.DB.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Review not found")
		} else {
			log.Printf("Failed to load review %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete review")
		}
		return
	}

	if err := db.DB.Unscoped().Delete(&review).Error; err != nil {
		log.Printf("Failed to delete review %d: %v", review.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete review")
		return
	}

	httpx.OKMessage(ctx, "Review deleted successfully", gin.H{"id": review.ID})
}
