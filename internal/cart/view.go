package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewel109/mobiledoor-api/pkg/db/models"
)

// CartView is the API representation of a cart.
type CartView struct {
	ID        uuid.UUID       `json:"id"`
	Items     []CartItemView  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CartItemView struct {
	ID       uuid.UUID       `json:"id"`
	Product  CartProduct     `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartProduct is the live product state shown next to a line.
type CartProduct struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"imageUrl,omitempty"`
	Stock    int             `json:"stock"`
	InStock  bool            `json:"inStock"`
}

func newCartView(record *models.Cart) *CartView {
	view := &CartView{
		ID:        record.ID,
		Items:     make([]CartItemView, 0, len(record.Items)),
		Total:     record.Total,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	for _, item := range record.Items {
		line := CartItemView{
			ID:       item.ID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal(),
		}
		if item.Product != nil {
			line.Product = CartProduct{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Brand:    item.Product.Brand,
				Price:    item.Product.Price,
				ImageURL: item.Product.ImageURL,
				Stock:    item.Product.Stock,
				InStock:  item.Product.InStock,
			}
		} else {
			line.Product = CartProduct{ID: item.ProductID}
		}
		view.Items = append(view.Items, line)
		view.ItemCount += item.Quantity
	}
	return view
}

// SumItems returns Σ price × quantity across items.
func SumItems(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
