package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewel109/mobiledoor-api/pkg/db/models"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
)

// CreateOrderInput carries the checkout form.
type CreateOrderInput struct {
	ShippingAddress string
	BillingAddress  *string
	Notes           *string
}

// UpdateStatusInput is the administrative status change request. Notes
// replace the stored notes only when non-nil.
type UpdateStatusInput struct {
	Status enums.OrderStatus
	Notes  *string
}

// OrderView is the order snapshot returned to callers.
type OrderView struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"userId"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"paymentStatus"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress"`
	BillingAddress  *string             `json:"billingAddress,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Items           []OrderItemView     `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// OrderItemView is a snapshot line of an order.
type OrderItemView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// Stats summarises orders for one user or the whole store.
type Stats struct {
	TotalOrders    int64                       `json:"totalOrders"`
	TotalRevenue   decimal.Decimal             `json:"totalRevenue"`
	OrdersByStatus map[enums.OrderStatus]int64 `json:"ordersByStatus"`
}

func newOrderView(order models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}
	return OrderView{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		Notes:           order.Notes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
