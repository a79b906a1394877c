package handlers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shoply-dev/shoply/internal/models"
	"github.com/shoply-dev/shoply/internal/storage"
	"github.com/shoply-dev/shoply/internal/types"
)

// UserResponse is the public projection of a user record. Sensitive columns
// (password hash, reset and activation tokens) are simply not fields here.
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Avatar    string     `json:"avatar,omitempty"`
	Role      types.Role `json:"role"`
	IsActive  bool       `json:"isActive"`
	Activated bool       `json:"activated"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    storage.PublicURL(u.Avatar, storage.FolderAvatars),
		Role:      u.Role,
		IsActive:  u.IsActive,
		Activated: u.Activated,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

type UserBrief struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type CategorySummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductBrief struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

func newProductBrief(p *models.Product) ProductBrief {
	return ProductBrief{
		ID:    p.ID,
		Name:  p.Name,
		Image: storage.PublicURL(p.Image, storage.FolderProducts),
	}
}

type ProductResponse struct {
	ID            uint             `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	StockQuantity int              `json:"stockQuantity"`
	CategoryID    uint             `json:"categoryId"`
	Category      *CategorySummary `json:"category,omitempty"`
	OwnerID       *uint            `json:"ownerId,omitempty"`
	Image         string           `json:"image,omitempty"`
	Images        []string         `json:"images,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		CategoryID:    p.CategoryID,
		OwnerID:       p.OwnerID,
		Image:         storage.PublicURL(p.Image, storage.FolderProducts),
		CreatedAt:     p.CreatedAt,
	}

	if p.Category.ID != 0 {
		resp.Category = &CategorySummary{ID: p.Category.ID, Name: p.Category.Name}
	}

	if len(p.Images) > 0 {
		var names []string

		if err := json.Unmarshal(p.Images, &names); err == nil {
			for _, name := range names {
				resp.Images = append(resp.Images, storage.PublicURL(name, storage.FolderProducts))
			}
		}
	}

	return resp
}

// ProductDetailResponse adds the derived review statistics to the product
// projection. AverageRating is nil when the product has no reviews.
type ProductDetailResponse struct {
	ProductResponse
	AverageRating      *float64    `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}

type ReviewResponse struct {
	ID        uint          `json:"id"`
	ProductID uint          `json:"productId"`
	UserID    uint          `json:"userId"`
	Text      string        `json:"text"`
	Rating    int           `json:"rating"`
	CreatedAt time.Time     `json:"createdAt"`
	Product   *ProductBrief `json:"product,omitempty"`
	User      *UserBrief    `json:"user,omitempty"`
}

func NewReviewResponse(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Text:      r.Text,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}

	if r.Product.ID != 0 {
		brief := newProductBrief(&r.Product)
		resp.Product = &brief
	}

	if r.User.ID != 0 {
		resp.User = &UserBrief{ID: r.User.ID, FirstName: r.User.FirstName, LastName: r.User.LastName, Email: r.User.Email}
	}

	return resp
}

type OrderItemResponse struct {
	ID          uint            `json:"id"`
	OrderID     uint            `json:"orderId"`
	ProductID   uint            `json:"productId"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"priceAtTime"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	Product     *ProductBrief   `json:"product,omitempty"`
}

func NewOrderItemResponse(i *models.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:          i.ID,
		OrderID:     i.OrderID,
		ProductID:   i.ProductID,
		Quantity:    i.Quantity,
		PriceAtTime: i.PriceAtTime,
		LineTotal:   i.LineTotal(),
	}

	if i.Product.ID != 0 {
		brief := newProductBrief(&i.Product)
		resp.Product = &brief
	}

	return resp
}

type OrderResponse struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"userId"`
	Date            time.Time           `json:"date"`
	Amount          decimal.Decimal     `json:"amount"`
	Status          types.OrderStatus   `json:"status"`
	ShippingAddress string              `json:"shippingAddress"`
	PaymentMethod   types.PaymentMethod `json:"paymentMethod"`
	PaymentStatus   types.PaymentStatus `json:"paymentStatus"`
	Items           []OrderItemResponse `json:"items"`
	User            *UserBrief          `json:"user,omitempty"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Date:            o.Date,
		Amount:          o.Amount,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
	}

	for i := range o.Items {
		resp.Items = append(resp.Items, NewOrderItemResponse(&o.Items[i]))
	}

	if o.User.ID != 0 {
		resp.User = &UserBrief{ID: o.User.ID, FirstName: o.User.FirstName, LastName: o.User.LastName, Email: o.User.Email}
	}

	return resp
}
