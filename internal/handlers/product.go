package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/middleware"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int             `json:"stockQuantity" binding:"gte=0"`
	CategoryID    uint            `json:"categoryId" binding:"required"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stockQuantity"`
	CategoryID    *uint            `json:"categoryId"`
}

// sortColumns is the allow-list for the sortBy query parameter.
var sortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"createdAt": "created_at",
}

// ListProducts is the catalog query: category, price-range and name-substring
// filters, allow-listed sorting and pagination.
func ListProducts(ctx *gin.Context) {
	page, limit, offset := pagination(ctx)

	query := db.DB.Model(&models.Product{})

	if categoryID := ctx.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	if minPrice := ctx.Query("minPrice"); minPrice != "" {
		if v, err := decimal.NewFromString(minPrice); err == nil {
			query = query.Where("price >= ?", v)
		}
	}

	if maxPrice := ctx.Query("maxPrice"); maxPrice != "" {
		if v, err := decimal.NewFromString(maxPrice); err == nil {
			query = query.Where("price <= ?", v)
		}
	}

	if search := ctx.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	orderClause := "created_at DESC"

	if column, ok := sortColumns[ctx.Query("sortBy")]; ok {
		direction := "ASC"

		if ctx.Query("sortOrder") == "desc" {
			direction = "DESC"
		}

		orderClause = column + " " + direction
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count products: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	var products []models.Product

	if err := query.Preload("Category").Order(orderClause).Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		log.Printf("Failed to list products: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	response := make([]ProductResponse, 0, len(products))

	for i := range products {
		response = append(response, NewProductResponse(&products[i]))
	}

	httpx.List(ctx, response, httpx.Paginate(page, limit, total))
}

// GetProduct returns the product with its review statistics: mean rating
// rounded to one decimal (null without reviews) and a zero-filled histogram.
func GetProduct(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product

	if err := db.DB.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}

	var ratings []int

	if err := db.DB.Model(&models.Review{}).Where("product_id = ?", product.ID).Pluck("rating", &ratings).Error; err != nil {
		log.Printf("Failed to load ratings for product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	detail := ProductDetailResponse{
		ProductResponse:    NewProductResponse(&product),
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	if len(ratings) > 0 {
		sum := 0

		for _, rating := range ratings {
			sum += rating

			if rating >= 1 && rating <= 5 {
				detail.RatingDistribution[rating]++
			}
		}

		avg := math.Round(float64(sum)/float64(len(ratings))*10) / 10
		detail.AverageRating = &avg
	}

	httpx.OK(ctx, detail)
}

// CreateProduct adds a catalog entry owned by the calling seller.
func CreateProduct(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		httpx.Error(ctx, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req CreateProductRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Specify the product name, price and category")
		return
	}

	if req.Price.IsNegative() {
		httpx.Error(ctx, http.StatusBadRequest, "Price must not be negative")
		return
	}

	var category models.Category

	if err := db.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusBadRequest, "The specified category does not exist")
		} else {
			log.Printf("Failed to load category %d: %v", req.CategoryID, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}

	ownerID := currentUser.ID
	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    category.ID,
		OwnerID:       &ownerID,
	}

	if err := db.DB.Create(&product).Error; err != nil {
		log.Printf("Failed to create product: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to create product")
		return
	}

	product.Category = category

	httpx.Created(ctx, "Product created successfully", NewProductResponse(&product))
}

// UpdateProduct applies a partial update. Ownership is enforced by the
// RequireOwnerOrRole guard on the route.
func UpdateProduct(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product

	if err := db.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}

	var req UpdateProductRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		updates["name"] = *req.Name
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.Price != nil {
		if req.Price.IsNegative() {
			httpx.Error(ctx, http.StatusBadRequest, "Price must not be negative")
			return
		}

		updates["price"] = *req.Price
	}

	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			httpx.Error(ctx, http.StatusBadRequest, "Stock quantity must not be negative")
			return
		}

		updates["stock_quantity"] = *req.StockQuantity
	}

	if req.CategoryID != nil {
		var category models.Category

		if err := db.DB.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.Error(ctx, http.StatusBadRequest, "The specified category does not exist")
			} else {
				log.Printf("Failed to load category %d: %v", *req.CategoryID, err)
				httpx.Error(ctx, http.StatusInternalServerError, "Failed to update product")
			}
			return
		}

		updates["category_id"] = *req.CategoryID
	}

	if len(updates) == 0 {
		httpx.Error(ctx, http.StatusBadRequest, "No valid fields to update")
		return
	}

	if err := db.DB.Model(&product).Updates(updates).Error; err != nil {
		log.Printf("Failed to update product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to update product")
		return
	}

	if err := db.DB.Preload("Category").First(&product, product.ID).Error; err != nil {
		log.Printf("Failed to reload product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to update product")
		return
	}

	httpx.OKMessage(ctx, "Product updated successfully", NewProductResponse(&product))
}

// DeleteProduct removes a catalog entry unless order items still reference
// it.
func DeleteProduct(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product

	if err := db.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}

	var references int64

	if err := db.DB.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&references).Error; err != nil {
		log.Printf("Failed to count order items for product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	if references > 0 {
		httpx.Error(ctx, http.StatusBadRequest, "Cannot delete a product that is referenced by orders")
		return
	}

	if err := db.DB.Delete(&product).Error; err != nil {
		log.Printf("Failed to delete product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	httpx.OKMessage(ctx, "Product deleted successfully", gin.H{"id": product.ID})
}

// UploadProductImage stores a single image and sets it as the product's main
// image.
func UploadProductImage(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product

	if err := db.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload image")
		}
		return
	}

	file, err := ctx.FormFile("image")

	if err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Attach an image using the \"image\" form field")
		return
	}

	name, err := storage.SaveUpload(file, storage.FolderProducts)

	if err != nil {
		httpx.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if product.Image != "" {
		if err := storage.Remove(product.Image, storage.FolderProducts); err != nil {
			log.Printf("Failed to remove previous image of product %d: %v", product.ID, err)
		}
	}

	if err := db.DB.Model(&product).Update("image", name).Error; err != nil {
		log.Printf("Failed to save image of product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	httpx.OKMessage(ctx, "Image uploaded successfully", gin.H{"image": storage.PublicURL(name, storage.FolderProducts)})
}

// UploadProductImages stores up to five additional images.
func UploadProductImages(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var product models.Product

	if err := db.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload images")
		}
		return
	}

	form, err := ctx.MultipartForm()

	if err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Attach images using the \"images\" form field")
		return
	}

	files := form.File["images"]

	if len(files) == 0 {
		httpx.Error(ctx, http.StatusBadRequest, "Attach images using the \"images\" form field")
		return
	}

	if len(files) > 5 {
		httpx.Error(ctx, http.StatusBadRequest, "Too many files. Maximum: 5")
		return
	}

	var names []string

	if len(product.Images) > 0 {
		if err := json.Unmarshal(product.Images, &names); err != nil {
			names = nil
		}
	}

	// Stage the batch in the temp folder so a rejected file leaves nothing
	// behind in the product folder.
	var staged []string

	for _, file := range files {
		name, err := storage.SaveUpload(file, storage.FolderTemp)

		if err != nil {
			discardStaged(staged)
			httpx.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}

		staged = append(staged, name)
	}

	var urls []string

	for i, name := range staged {
		if err := storage.MoveToPermanent(name, storage.FolderProducts); err != nil {
			log.Printf("Failed to move staged image %s for product %d: %v", name, product.ID, err)
			discardStaged(staged[i:])
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload images")
			return
		}

		names = append(names, name)
		urls = append(urls, storage.PublicURL(name, storage.FolderProducts))
	}

	encoded, err := json.Marshal(names)

	if err != nil {
		log.Printf("Failed to encode image list for product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload images")
		return
	}

	if err := db.DB.Model(&product).Update("images", datatypes.JSON(encoded)).Error; err != nil {
		log.Printf("Failed to save image list of product %d: %v", product.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload images")
		return
	}

	httpx.OKMessage(ctx, "Images uploaded successfully", gin.H{"images": urls})
}

func discardStaged(names []string) {
	for _, name := range names {
		if err := storage.Remove(name, storage.FolderTemp); err != nil {
			log.Printf("Failed to discard staged upload %s: %v", name, err)
		}
	}
}
