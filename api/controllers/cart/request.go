package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/jewel109/mobiledoor-api/internal/cart"
)

// AddItemRequest is the body of POST /cart/items.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=5"`
}

func (r AddItemRequest) toInput() cartsvc.AddItemInput {
	return cartsvc.AddItemInput{ProductID: r.ProductID, Quantity: r.Quantity}
}

// UpdateItemRequest is the body of PATCH /cart/items/{itemId}.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=5"`
}
