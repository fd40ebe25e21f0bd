package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewel109/mobiledoor-api/pkg/db/models"
)

// ProductDTO is the storefront view of a product.
type ProductDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand"`
	Price       decimal.Decimal   `json:"price"`
	Description *string           `json:"description,omitempty"`
	Specs       map[string]string `json:"specs,omitempty"`
	ImageURL    *string           `json:"imageUrl,omitempty"`
	Stock       int               `json:"stock"`
	InStock     bool              `json:"inStock"`
}

// FromModel maps a product row into its DTO.
func FromModel(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       p.Price,
		Description: p.Description,
		Specs:       p.Specs,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		InStock:     p.InStock,
	}
}
