package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jewel109/mobiledoor-api/pkg/enums"
)

// OrderLine is the item snapshot carried by order events.
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCreatedEvent is emitted when checkout commits.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	UserID      uuid.UUID       `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderLine     `json:"items"`
}

// OrderStatusChangedEvent records an administrative status move.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID         `json:"order_id"`
	UserID         uuid.UUID         `json:"user_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	Status         enums.OrderStatus `json:"status"`
}

// OrderPaymentUpdatedEvent records a payment outcome applied to an order.
type OrderPaymentUpdatedEvent struct {
	OrderID               uuid.UUID           `json:"order_id"`
	UserID                uuid.UUID           `json:"user_id"`
	PreviousPaymentStatus enums.PaymentStatus `json:"previous_payment_status"`
	PaymentStatus         enums.PaymentStatus `json:"payment_status"`
	Status                enums.OrderStatus   `json:"status"`
}

// OrderCancelledEvent is emitted once stock for the order has been released.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID   `json:"order_id"`
	UserID      uuid.UUID   `json:"user_id"`
	Reason      string      `json:"reason,omitempty"`
	Released    []OrderLine `json:"released"`
	CancelledAt time.Time   `json:"cancelled_at"`
}
