package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/storage"
	"github.com/shoply-dev/shoply/internal/types"
)

func TestListProductsPagination(t *testing.T) {
	setupDB(t)
	r := newRouter()

	category := createCategory(t, "Electronics")

	for i := 1; i <= 25; i++ {
		createProduct(t, fmt.Sprintf("Product %02d", i), float64(i), 10, category.ID, nil)
	}

	rec := doJSON(t, r, http.MethodGet, "/api/products?page=2&limit=10&sortBy=name", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	body := parseBody(t, rec)
	data := body["data"].([]any)

	if len(data) != 10 {
		t.Errorf("page size = %d, want 10", len(data))
	}

	if first := data[0].(map[string]any)["name"]; first != "Product 11" {
		t.Errorf("first product on page 2 = %v, want Product 11", first)
	}

	pagination := body["pagination"].(map[string]any)

	checks := map[string]any{
		"page":        float64(2),
		"limit":       float64(10),
		"totalItems":  float64(25),
		"totalPages":  float64(3),
		"hasNextPage": true,
		"hasPrevPage": true,
	}

	for key, want := range checks {
		if got := pagination[key]; got != want {
			t.Errorf("pagination[%q] = %v, want %v", key, got, want)
		}
	}
}

func TestListProductsFilters(t *testing.T) {
	setupDB(t)
	r := newRouter()

	electronics := createCategory(t, "Electronics")
	books := createCategory(t, "Books")

	createProduct(t, "Wireless Mouse", 24.99, 10, electronics.ID, nil)
	createProduct(t, "Mechanical Keyboard", 89.99, 10, electronics.ID, nil)
	createProduct(t, "Go Programming", 39.99, 10, books.ID, nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"by category", "categoryId=" + strconv.Itoa(int(books.ID)), []string{"Go Programming"}},
		{"by price range", "minPrice=30&maxPrice=50", []string{"Go Programming"}},
		{"by substring", "search=mouse", []string{"Wireless Mouse"}},
		{"combined", "categoryId=" + strconv.Itoa(int(electronics.ID)) + "&maxPrice=50", []string{"Wireless Mouse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodGet, "/api/products?"+tt.query, "", nil)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			data := parseBody(t, rec)["data"].([]any)

			if len(data) != len(tt.want) {
				t.Fatalf("got %d products, want %d (body %s)", len(data), len(tt.want), rec.Body.String())
			}

			for i, want := range tt.want {
				if got := data[i].(map[string]any)["name"]; got != want {
					t.Errorf("product[%d] = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestGetProductRatingStats(t *testing.T) {
	setupDB(t)
	r := newRouter()

	category := createCategory(t, "Electronics")
	product := createProduct(t, "Wireless Mouse", 24.99, 10, category.ID, nil)

	ratings := []int{5, 4, 4}

	for i, rating := range ratings {
		user := createUser(t, fmt.Sprintf("reviewer%d", i), types.RoleCustomer)

		review := models.Review{ProductID: product.ID, UserID: user.ID, Text: "Solid little device, works well", Rating: rating}

		if err := db.DB.Create(&review).Error; err != nil {
			t.Fatalf("failed to create review: %v", err)
		}
	}

	rec := doJSON(t, r, http.MethodGet, "/api/products/"+strconv.Itoa(int(product.ID)), "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	data := parseBody(t, rec)["data"].(map[string]any)

	if got := data["averageRating"]; got != 4.3 {
		t.Errorf("averageRating = %v, want 4.3", got)
	}

	distribution := data["ratingDistribution"].(map[string]any)

	wants := map[string]float64{"1": 0, "2": 0, "3": 0, "4": 2, "5": 1}

	for star, want := range wants {
		if got := distribution[star]; got != want {
			t.Errorf("ratingDistribution[%s] = %v, want %v", star, got, want)
		}
	}
}

func TestGetProductWithoutReviews(t *testing.T) {
	setupDB(t)
	r := newRouter()

	category := createCategory(t, "Electronics")
	product := createProduct(t, "Wireless Mouse", 24.99, 10, category.ID, nil)

	rec := doJSON(t, r, http.MethodGet, "/api/products/"+strconv.Itoa(int(product.ID)), "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	data := parseBody(t, rec)["data"].(map[string]any)

	if got := data["averageRating"]; got != nil {
		t.Errorf("averageRating = %v, want null", got)
	}
}

func TestCreateProduct(t *testing.T) {
	setupDB(t)
	r := newRouter()

	customer := createUser(t, "alice", types.RoleCustomer)
	seller := createUser(t, "bob", types.RoleSeller)
	category := createCategory(t, "Electronics")

	payload := map[string]any{
		"name":          "Wireless Mouse",
		"price":         24.99,
		"stockQuantity": 5,
		"categoryId":    category.ID,
	}

	rec := doJSON(t, r, http.MethodPost, "/api/products", tokenFor(t, customer), payload)

	if rec.Code != http.StatusForbidden {
		t.Errorf("customer create status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/products", tokenFor(t, seller), payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("seller create status = %d (body %s)", rec.Code, rec.Body.String())
	}

	data := parseBody(t, rec)["data"].(map[string]any)

	if got := data["ownerId"]; got != float64(seller.ID) {
		t.Errorf("ownerId = %v, want %d", got, seller.ID)
	}

	// Unknown category is rejected up front.
	payload["categoryId"] = 9999

	rec = doJSON(t, r, http.MethodPost, "/api/products", tokenFor(t, seller), payload)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d, want 400", rec.Code)
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	setupDB(t)
	r := newRouter()

	owner := createUser(t, "owner", types.RoleSeller)
	stranger := createUser(t, "stranger", types.RoleSeller)
	moderator := createUser(t, "mod", types.RoleModerator)
	category := createCategory(t, "Electronics")
	product := createProduct(t, "Wireless Mouse", 24.99, 10, category.ID, &owner.ID)

	path := "/api/products/" + strconv.Itoa(int(product.ID))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"stranger", tokenFor(t, stranger), http.StatusForbidden},
		{"owner", tokenFor(t, owner), http.StatusOK},
		{"moderator", tokenFor(t, moderator), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPut, path, tt.token, map[string]any{"name": "Renamed Mouse"})

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestDeleteProductReferencedByOrders(t *testing.T) {
	setupDB(t)
	r := newRouter()

	customer := createUser(t, "alice", types.RoleCustomer)
	admin := createUser(t, "root", types.RoleAdmin)
	category := createCategory(t, "Electronics")
	product := createProduct(t, "Wireless Mouse", 24.99, 10, category.ID, nil)

	rec := doJSON(t, r, http.MethodPost, "/api/orders", tokenFor(t, customer), orderPayload(line(product.ID, 1)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to place order: %d", rec.Code)
	}

	path := "/api/products/" + strconv.Itoa(int(product.ID))

	rec = doJSON(t, r, http.MethodDelete, path, tokenFor(t, admin), nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete status = %d, want 400 while order items reference the product", rec.Code)
	}
}

func TestPartialProductUpdate(t *testing.T) {
	setupDB(t)
	r := newRouter()

	moderator := createUser(t, "mod", types.RoleModerator)
	category := createCategory(t, "Electronics")
	product := createProduct(t, "Wireless Mouse", 24.99, 10, category.ID, nil)

	path := "/api/products/" + strconv.Itoa(int(product.ID))

	rec := doJSON(t, r, http.MethodPut, path, tokenFor(t, moderator), map[string]any{"price": 19.99})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var reloaded models.Product

	if err := db.DB.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}

	if reloaded.Name != "Wireless Mouse" {
		t.Errorf("name changed to %q on a price-only update", reloaded.Name)
	}

	if reloaded.Price.String() != "19.99" {
		t.Errorf("price = %s, want 19.99", reloaded.Price)
	}

	if reloaded.StockQuantity != 10 {
		t.Errorf("stock = %d, want 10", reloaded.StockQuantity)
	}
}

func TestUploadProductImages(t *testing.T) {
	setupDB(t)
	t.Setenv("UPLOADS_DIR", t.TempDir())

	if err := storage.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	r := newRouter()

	moderator := createUser(t, "mod", types.RoleModerator)
	category := createCategory(t, "Electronics")
	mouse := createProduct(t, "Wireless Mouse", 24.99, 50, category.ID, nil)

	token := tokenFor(t, moderator)
	path := "/api/products/" + strconv.Itoa(int(mouse.ID)) + "/images"

	folderCount := func(folder string) int {
		t.Helper()

		entries, err := os.ReadDir(filepath.Join(storage.BaseDir(), folder))

		if err != nil {
			t.Fatalf("failed to read %s folder: %v", folder, err)
		}

		return len(entries)
	}

	rec := doUpload(t, r, http.MethodPost, path, token, "images", []uploadFile{
		{name: "front.png", content: []byte("png-bytes")},
		{name: "back.jpg", content: []byte("jpg-bytes")},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d (body %s)", rec.Code, rec.Body.String())
	}

	images := parseBody(t, rec)["data"].(map[string]any)["images"].([]any)

	if len(images) != 2 {
		t.Fatalf("response lists %d images, want 2", len(images))
	}

	if got := folderCount(storage.FolderProducts); got != 2 {
		t.Errorf("products folder holds %d files, want 2", got)
	}

	if got := folderCount(storage.FolderTemp); got != 0 {
		t.Errorf("temp folder holds %d staged files after success, want 0", got)
	}

	var product models.Product

	if err := db.DB.First(&product, mouse.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}

	var names []string

	if err := json.Unmarshal(product.Images, &names); err != nil || len(names) != 2 {
		t.Errorf("stored image list = %s (err %v), want 2 names", product.Images, err)
	}

	// One bad file rejects the whole batch and nothing is left behind.
	rec = doUpload(t, r, http.MethodPost, path, token, "images", []uploadFile{
		{name: "side.png", content: []byte("png-bytes")},
		{name: "manual.txt", content: []byte("not an image")},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mixed batch status = %d, want 400", rec.Code)
	}

	if got := folderCount(storage.FolderProducts); got != 2 {
		t.Errorf("products folder holds %d files after rejected batch, want 2", got)
	}

	if got := folderCount(storage.FolderTemp); got != 0 {
		t.Errorf("temp folder holds %d files after rejected batch, want 0", got)
	}
}
