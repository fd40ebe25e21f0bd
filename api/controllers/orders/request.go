package orders

import (
	internalorders "github.com/jewel109/mobiledoor-api/internal/orders"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
)

// CreateOrderRequest is the checkout form. The service trims and re-checks
// the bounds after whitespace is removed.
type CreateOrderRequest struct {
	ShippingAddress string  `json:"shippingAddress" validate:"required,min=5,max=500"`
	BillingAddress  *string `json:"billingAddress,omitempty" validate:"omitempty,min=5,max=500"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r CreateOrderRequest) toInput() internalorders.CreateOrderInput {
	return internalorders.CreateOrderInput{
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		Notes:           r.Notes,
	}
}

type UpdateStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Notes  *string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r UpdateStatusRequest) toInput() internalorders.UpdateStatusInput {
	return internalorders.UpdateStatusInput{Status: r.Status, Notes: r.Notes}
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus enums.PaymentStatus `json:"paymentStatus" validate:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
}
