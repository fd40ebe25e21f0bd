package orders

import "github.com/jewel109/mobiledoor-api/pkg/enums"

var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:   {enums.OrderStatusDelivered},
}

// Outcomes a payment processor may report. REFUNDED is reached only through
// cancellation.
var paymentTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending: {enums.PaymentStatusCompleted, enums.PaymentStatusFailed},
}

// CanTransition reports whether the order diagram allows from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether a reported payment outcome may move the
// payment state from -> to.
func CanTransitionPayment(from, to enums.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsCancellable reports whether the order may still be cancelled.
func IsCancellable(status enums.OrderStatus) bool {
	return CanTransition(status, enums.OrderStatusCancelled)
}

// NextStatuses lists the legal successors of status.
func NextStatuses(status enums.OrderStatus) []enums.OrderStatus {
	next := statusTransitions[status]
	out := make([]enums.OrderStatus, len(next))
	copy(out, next)
	return out
}
