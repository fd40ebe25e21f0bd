package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jewel109/mobiledoor-api/internal/authz"
	"github.com/jewel109/mobiledoor-api/internal/cart"
	"github.com/jewel109/mobiledoor-api/pkg/db/models"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
	"github.com/jewel109/mobiledoor-api/pkg/logger"
	"github.com/jewel109/mobiledoor-api/pkg/metrics"
	"github.com/jewel109/mobiledoor-api/pkg/outbox"
	"github.com/jewel109/mobiledoor-api/pkg/outbox/payloads"
	"github.com/jewel109/mobiledoor-api/pkg/pagination"
)

const (
	MinAddressLength = 5
	MaxAddressLength = 500
	MaxNotesLength   = 1000

	OperationCreate       = "create"
	OperationCancel       = "cancel"
	OperationUpdateStatus = "update_status"
	OperationPayment      = "apply_payment"

	msgOrderNotFound   = "Order not found"
	msgNotCancellable  = "Order cannot be cancelled at this stage"
	msgConcurrentWrite = "order was modified concurrently, retry"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type checkoutValidator interface {
	ValidateForCheckout(ctx context.Context, userID uuid.UUID) (*cart.CheckoutValidation, error)
}

// InventoryLedger reserves and restocks product units inside a transaction.
type InventoryLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.Product, error)
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service exposes checkout, lifecycle transitions and order queries.
type Service interface {
	CreateOrder(ctx context.Context, actor authz.Actor, input CreateOrderInput) (*OrderView, error)
	GetOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderView, error)
	ListUserOrders(ctx context.Context, actor authz.Actor, params pagination.Params) (pagination.Page[OrderView], error)
	ListAllOrders(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (pagination.Page[OrderView], error)
	Stats(ctx context.Context, actor authz.Actor, userID *uuid.UUID) (*Stats, error)
	UpdateStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, input UpdateStatusInput) (*OrderView, error)
	ApplyPaymentStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status enums.PaymentStatus) (*OrderView, error)
	Cancel(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderView, error)
}

// ServiceParams wires the order service. Metrics and Logger are optional.
type ServiceParams struct {
	Repository Repository
	Carts      cart.CartRepository
	Validator  checkoutValidator
	Ledger     InventoryLedger
	Tx         txRunner
	Outbox     outboxPublisher
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
}

type service struct {
	repo      Repository
	carts     cart.CartRepository
	validator checkoutValidator
	ledger    InventoryLedger
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Validator == nil {
		return nil, fmt.Errorf("cart validator required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repository,
		carts:     params.Carts,
		validator: params.Validator,
		ledger:    params.Ledger,
		tx:        params.Tx,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      logg,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, actor authz.Actor, input CreateOrderInput) (*OrderView, error) {
	start := time.Now()
	view, err := s.createOrder(ctx, actor, input)
	s.metrics.Observe(OperationCreate, err)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCheckout(time.Since(start))
	logCtx := s.logg.WithOrderID(s.logg.WithUserID(ctx, actor.UserID.String()), view.ID.String())
	s.logg.Info(logCtx, "order.created")
	return view, nil
}

func (s *service) createOrder(ctx context.Context, actor authz.Actor, input CreateOrderInput) (*OrderView, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	input, err := normalizeCreateInput(input)
	if err != nil {
		return nil, err
	}

	// Read-only gate; every check is repeated under lock below.
	validation, err := s.validator.ValidateForCheckout(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := validation.Err(); err != nil {
		return nil, err
	}

	var created models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		repo := s.repo.WithTx(tx)

		record, err := carts.LockByUser(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}
		items, err := carts.ListItems(ctx, record.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
		}
		// Stable lock order across concurrent checkouts.
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})

		order := models.Order{
			ID:              uuid.New(),
			UserID:          actor.UserID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  input.BillingAddress,
			Notes:           input.Notes,
		}
		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			product, err := s.ledger.Reserve(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			lines = append(lines, models.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
				Total:       lineTotal,
			})
		}
		order.TotalAmount = total

		if err := repo.CreateOrder(ctx, &order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		if err := carts.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if err := carts.UpdateTotal(ctx, record.ID, decimal.Zero); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cart total")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.OrderCreatedEvent{
				OrderID:     order.ID,
				UserID:      order.UserID,
				TotalAmount: order.TotalAmount,
				Items:       orderLines(lines),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
		}

		order.Items = lines
		created = order
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, "create order")
	}
	view := newOrderView(created)
	return &view, nil
}

func normalizeCreateInput(input CreateOrderInput) (CreateOrderInput, error) {
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	if n := utf8.RuneCountInString(input.ShippingAddress); n < MinAddressLength || n > MaxAddressLength {
		return input, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("shipping address must be between %d and %d characters", MinAddressLength, MaxAddressLength)).
			WithDetails(map[string]any{"field": "shippingAddress"})
	}
	if input.BillingAddress != nil {
		billing := strings.TrimSpace(*input.BillingAddress)
		if n := utf8.RuneCountInString(billing); n < MinAddressLength || n > MaxAddressLength {
			return input, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("billing address must be between %d and %d characters", MinAddressLength, MaxAddressLength)).
				WithDetails(map[string]any{"field": "billingAddress"})
		}
		input.BillingAddress = &billing
	}
	if err := validateNotes(input.Notes); err != nil {
		return input, err
	}
	return input, nil
}

func validateNotes(notes *string) error {
	if notes != nil && utf8.RuneCountInString(*notes) > MaxNotesLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("notes must be at most %d characters", MaxNotesLength)).
			WithDetails(map[string]any{"field": "notes"})
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if err := authz.RequireOwnerOr(actor, order.UserID, authz.CapManageOrders); err != nil {
		return nil, err
	}
	view := newOrderView(*order)
	return &view, nil
}

func (s *service) ListUserOrders(ctx context.Context, actor authz.Actor, params pagination.Params) (pagination.Page[OrderView], error) {
	if actor.UserID == uuid.Nil {
		return pagination.Page[OrderView]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	userID := actor.UserID
	return s.list(ctx, ListFilters{UserID: &userID}, params)
}

func (s *service) ListAllOrders(ctx context.Context, actor authz.Actor, filters ListFilters, params pagination.Params) (pagination.Page[OrderView], error) {
	if err := authz.Require(actor, authz.CapManageOrders); err != nil {
		return pagination.Page[OrderView]{}, err
	}
	return s.list(ctx, filters, params)
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (pagination.Page[OrderView], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return pagination.Page[OrderView]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return pagination.Map(pagination.NewPage(rows, params, total), newOrderView), nil
}

// Stats summarises one user's orders, or every order when userID is nil.
func (s *service) Stats(ctx context.Context, actor authz.Actor, userID *uuid.UUID) (*Stats, error) {
	if userID == nil {
		if err := authz.Require(actor, authz.CapManageOrders); err != nil {
			return nil, err
		}
	} else if err := authz.RequireOwnerOr(actor, *userID, authz.CapManageOrders); err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	rawRevenue, err := s.repo.SumRevenue(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	revenue, err := decimal.NewFromString(rawRevenue)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse revenue")
	}

	stats := &Stats{
		TotalRevenue:   revenue.Round(2),
		OrdersByStatus: make(map[enums.OrderStatus]int64, len(enums.OrderStatuses())),
	}
	for _, status := range enums.OrderStatuses() {
		stats.OrdersByStatus[status] = counts[status]
		stats.TotalOrders += counts[status]
	}
	return stats, nil
}

func (s *service) Cancel(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderView, error) {
	view, err := s.cancel(ctx, actor, orderID)
	s.metrics.Observe(OperationCancel, err)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order cancelled")
	return view, nil
}

func (s *service) cancel(ctx context.Context, actor authz.Actor, orderID uuid.UUID) (*OrderView, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var result *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "lock order")
		}
		if !actor.Owns(order.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "You can only cancel your own orders")
		}
		if !IsCancellable(order.Status) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule, msgNotCancellable).
				WithDetails(map[string]any{"status": order.Status})
		}
		if err := s.releaseAndCancel(ctx, tx, repo, order, actor, cancellation{
			payment: enums.PaymentStatusRefunded,
			reason:  "cancelled by customer",
		}); err != nil {
			return err
		}
		result, err = s.reload(ctx, repo, order.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, "cancel order")
	}
	return result, nil
}

type cancellation struct {
	payment enums.PaymentStatus
	notes   *string
	reason  string
}

// releaseAndCancel restocks every line of a locked order and moves it to
// CANCELLED in the caller's transaction.
func (s *service) releaseAndCancel(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, actor authz.Actor, c cancellation) error {
	items, err := repo.FindItems(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductID.String() < items[j].ProductID.String()
	})
	for _, item := range items {
		if err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	updates := map[string]any{
		"status":         enums.OrderStatusCancelled,
		"payment_status": c.payment,
	}
	if c.notes != nil {
		updates["notes"] = *c.notes
	}
	if err := applyGuarded(ctx, repo, order, updates); err != nil {
		return err
	}

	now := time.Now().UTC()
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCancelled,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actor),
		OccurredAt:    now,
		Data: payloads.OrderCancelledEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			Reason:      c.reason,
			Released:    orderLines(items),
			CancelledAt: now,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue cancel event")
	}
	return nil
}

func (s *service) UpdateStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, input UpdateStatusInput) (*OrderView, error) {
	view, err := s.updateStatus(ctx, actor, orderID, input)
	s.metrics.Observe(OperationUpdateStatus, err)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, orderID.String()), "status", view.Status)
	s.logg.Info(logCtx, "order status updated")
	return view, nil
}

func (s *service) updateStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, input UpdateStatusInput) (*OrderView, error) {
	if err := authz.Require(actor, authz.CapManageOrders); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}
	if err := validateNotes(input.Notes); err != nil {
		return nil, err
	}

	var result *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "lock order")
		}

		switch {
		case order.Status == input.Status:
			// Same status: only the notes may change, no event.
			if input.Notes != nil {
				if err := applyGuarded(ctx, repo, order, map[string]any{"notes": *input.Notes}); err != nil {
					return err
				}
			}
		case !CanTransition(order.Status, input.Status):
			return pkgerrors.New(pkgerrors.CodeBusinessRule,
				fmt.Sprintf("Cannot change order status from %s to %s", order.Status, input.Status)).
				WithDetails(map[string]any{
					"from":    order.Status,
					"to":      input.Status,
					"allowed": NextStatuses(order.Status),
				})
		case input.Status == enums.OrderStatusCancelled:
			if err := s.releaseAndCancel(ctx, tx, repo, order, actor, cancellation{
				payment: enums.PaymentStatusRefunded,
				notes:   input.Notes,
				reason:  "cancelled by administrator",
			}); err != nil {
				return err
			}
			if err := s.emitStatusChanged(ctx, tx, actor, order, input.Status); err != nil {
				return err
			}
		default:
			updates := map[string]any{"status": input.Status}
			if input.Notes != nil {
				updates["notes"] = *input.Notes
			}
			if err := applyGuarded(ctx, repo, order, updates); err != nil {
				return err
			}
			if err := s.emitStatusChanged(ctx, tx, actor, order, input.Status); err != nil {
				return err
			}
		}

		result, err = s.reload(ctx, repo, order.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, "update order status")
	}
	return result, nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, actor authz.Actor, order *models.Order, next enums.OrderStatus) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actor),
		Data: payloads.OrderStatusChangedEvent{
			OrderID:        order.ID,
			UserID:         order.UserID,
			PreviousStatus: order.Status,
			Status:         next,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue status event")
	}
	return nil
}

func (s *service) ApplyPaymentStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status enums.PaymentStatus) (*OrderView, error) {
	view, err := s.applyPaymentStatus(ctx, actor, orderID, status)
	s.metrics.Observe(OperationPayment, err)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, orderID.String()), "payment_status", view.PaymentStatus)
	s.logg.Info(logCtx, "order payment status applied")
	return view, nil
}

func (s *service) applyPaymentStatus(ctx context.Context, actor authz.Actor, orderID uuid.UUID, status enums.PaymentStatus) (*OrderView, error) {
	if err := authz.Require(actor, authz.CapManagePayments); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status))
	}
	if status == enums.PaymentStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeBusinessRule, "Refunds are issued by cancelling the order")
	}

	var result *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByID(ctx, orderID)
		if err != nil {
			return notFoundOr(err, "lock order")
		}
		if order.PaymentStatus == status {
			result, err = s.reload(ctx, repo, order.ID)
			return err
		}
		if !CanTransitionPayment(order.PaymentStatus, status) {
			return pkgerrors.New(pkgerrors.CodeBusinessRule,
				fmt.Sprintf("Cannot change payment status from %s to %s", order.PaymentStatus, status)).
				WithDetails(map[string]any{"from": order.PaymentStatus, "to": status})
		}

		nextStatus := order.Status
		switch status {
		case enums.PaymentStatusCompleted:
			updates := map[string]any{"payment_status": status}
			if order.Status == enums.OrderStatusPending {
				nextStatus = enums.OrderStatusConfirmed
				updates["status"] = nextStatus
			}
			if err := applyGuarded(ctx, repo, order, updates); err != nil {
				return err
			}
		case enums.PaymentStatusFailed:
			if !IsCancellable(order.Status) {
				return pkgerrors.New(pkgerrors.CodeBusinessRule,
					fmt.Sprintf("Payment failure cannot cancel an order in status %s", order.Status)).
					WithDetails(map[string]any{"status": order.Status})
			}
			nextStatus = enums.OrderStatusCancelled
			if err := s.releaseAndCancel(ctx, tx, repo, order, actor, cancellation{
				payment: enums.PaymentStatusFailed,
				reason:  "payment failed",
			}); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.OrderPaymentUpdatedEvent{
				OrderID:               order.ID,
				UserID:                order.UserID,
				PreviousPaymentStatus: order.PaymentStatus,
				PaymentStatus:         status,
				Status:                nextStatus,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue payment event")
		}

		result, err = s.reload(ctx, repo, order.ID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, "apply payment status")
	}
	return result, nil
}

func (s *service) reload(ctx context.Context, repo Repository, orderID uuid.UUID) (*OrderView, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	view := newOrderView(*order)
	return &view, nil
}

// applyGuarded writes updates only if the order is still in the state it was
// read in.
func applyGuarded(ctx context.Context, repo Repository, order *models.Order, updates map[string]any) error {
	rows, err := repo.UpdateState(ctx, order.ID, StateGuard{Status: order.Status, PaymentStatus: order.PaymentStatus}, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, msgConcurrentWrite)
	}
	return nil
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgOrderNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func actorRef(actor authz.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func orderLines(items []models.OrderItem) []payloads.OrderLine {
	lines := make([]payloads.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, payloads.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}
