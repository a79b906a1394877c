// Package httpx shapes every JSON response into the common
// {success, message, data, errors, pagination} envelope.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Paginate derives the pagination block from a page/limit pair and a total
// row count.
func Paginate(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Pagination{
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func OK(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func OKMessage(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

func Created(ctx *gin.Context, message string, data interface{}) {
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

func List(ctx *gin.Context, data interface{}, pagination Pagination) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": pagination})
}

func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"success": false, "message": message})
}

func ValidationErrors(ctx *gin.Context, message string, errs []string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message, "errors": errs})
}

// AbortError is Error for middleware, stopping the handler chain.
func AbortError(ctx *gin.Context, status int, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
