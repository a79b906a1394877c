package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/httpx"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/storage"
	"gorm.io/gorm"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type CategoryResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image,omitempty"`
	Products    []ProductResponse `json:"products,omitempty"`
}

func newCategoryResponse(c *models.Category, withProducts bool) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Image:       storage.PublicURL(c.Image, storage.FolderCategories),
	}

	if withProducts {
		resp.Products = make([]ProductResponse, 0, len(c.Products))

		for i := range c.Products {
			resp.Products = append(resp.Products, NewProductResponse(&c.Products[i]))
		}
	}

	return resp
}

func ListCategories(ctx *gin.Context) {
	var categories []models.Category

	if err := db.DB.Preload("Products").Find(&categories).Error; err != nil {
		log.Printf("Failed to list categories: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	response := make([]CategoryResponse, 0, len(categories))

	for i := range categories {
		response = append(response, newCategoryResponse(&categories[i], true))
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "count": len(response), "data": response})
}

func GetCategory(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var category models.Category

	if err := db.DB.Preload("Products").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Category not found")
		} else {
			log.Printf("Failed to load category %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to retrieve category")
		}
		return
	}

	httpx.OK(ctx, newCategoryResponse(&category, true))
}

func CreateCategory(ctx *gin.Context) {
	var req CreateCategoryRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Specify the category name")
		return
	}

	var existing models.Category

	err := db.DB.Where("name = ?", req.Name).First(&existing).Error

	if err == nil {
		httpx.Error(ctx, http.StatusBadRequest, "A category with this name already exists")
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check category name: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to create category")
		return
	}

	category := models.Category{Name: req.Name, Description: req.Description}

	if err := db.DB.Create(&category).Error; err != nil {
		log.Printf("Failed to create category: %v", err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to create category")
		return
	}

	httpx.Created(ctx, "Category created successfully", newCategoryResponse(&category, false))
}

func UpdateCategory(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var category models.Category

	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Category not found")
		} else {
			log.Printf("Failed to load category %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	var req UpdateCategoryRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid request")
		return
	}

	updates := make(map[string]interface{})

	if req.Name != nil && *req.Name != category.Name {
		var existing models.Category

		err := db.DB.Where("name = ? AND id != ?", *req.Name, category.ID).First(&existing).Error

		if err == nil {
			httpx.Error(ctx, http.StatusBadRequest, "A category with this name already exists")
			return
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to check category name: %v", err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to update category")
			return
		}

		updates["name"] = *req.Name
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		httpx.Error(ctx, http.StatusBadRequest, "No valid fields to update")
		return
	}

	if err := db.DB.Model(&category).Updates(updates).Error; err != nil {
		log.Printf("Failed to update category %d: %v", category.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to update category")
		return
	}

	httpx.OKMessage(ctx, "Category updated successfully", newCategoryResponse(&category, false))
}

// DeleteCategory refuses to remove a category while products reference it.
func DeleteCategory(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var category models.Category

	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Category not found")
		} else {
			log.Printf("Failed to load category %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete category")
		}
		return
	}

	var references int64

	if err := db.DB.Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&references).Error; err != nil {
		log.Printf("Failed to count products in category %d: %v", category.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	if references > 0 {
		httpx.Error(ctx, http.StatusBadRequest, "Cannot delete a category that still contains products")
		return
	}

	if err := db.DB.Delete(&category).Error; err != nil {
		log.Printf("Failed to delete category %d: %v", category.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	httpx.OKMessage(ctx, "Category deleted successfully", gin.H{"id": category.ID})
}

// UploadCategoryImage stores an image and sets it on the category.
func UploadCategoryImage(ctx *gin.Context) {
	id, ok := pathID(ctx)

	if !ok {
		httpx.Error(ctx, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var category models.Category

	if err := db.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Error(ctx, http.StatusNotFound, "Category not found")
		} else {
			log.Printf("Failed to load category %d: %v", id, err)
			httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload image")
		}
		return
	}

	file, err := ctx.FormFile("image")

	if err != nil {
		httpx.Error(ctx, http.StatusBadRequest, "Attach an image using the \"image\" form field")
		return
	}

	name, err := storage.SaveUpload(file, storage.FolderCategories)

	if err != nil {
		httpx.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if category.Image != "" {
		if err := storage.Remove(category.Image, storage.FolderCategories); err != nil {
			log.Printf("Failed to remove previous image of category %d: %v", category.ID, err)
		}
	}

	if err := db.DB.Model(&category).Update("image", name).Error; err != nil {
		log.Printf("Failed to save image of category %d: %v", category.ID, err)
		httpx.Error(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	httpx.OKMessage(ctx, "Image uploaded successfully", gin.H{"image": storage.PublicURL(name, storage.FolderCategories)})
}
