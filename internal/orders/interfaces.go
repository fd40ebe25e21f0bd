package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewel109/mobiledoor-api/pkg/db/models"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
	"github.com/jewel109/mobiledoor-api/pkg/pagination"
)

// Repository defines persistence operations for the orders tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateState(ctx context.Context, orderID uuid.UUID, expected StateGuard, updates map[string]any) (int64, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error)
	CountByStatus(ctx context.Context, userID *uuid.UUID) (map[enums.OrderStatus]int64, error)
	SumRevenue(ctx context.Context, userID *uuid.UUID) (string, error)
}

// StateGuard is the state an order must still be in for a guarded update to
// apply.
type StateGuard struct {
	Status        enums.OrderStatus
	PaymentStatus enums.PaymentStatus
}

// ListFilters narrows order listings. A nil UserID lists every user's orders.
type ListFilters struct {
	UserID        *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}
