package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jewel109/mobiledoor-api/pkg/db/models"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
	"github.com/jewel109/mobiledoor-api/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.created_at ASC").Order("order_items.id ASC")
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LockByID loads the bare order row FOR UPDATE.
func (r *repository) LockByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := orderedItems(r.db.WithContext(ctx)).
		Where("order_id = ?", orderID).
		Find(&items).Error
	return items, err
}

// UpdateState applies updates only while the order still matches expected.
// Zero rows affected means another writer moved the order first.
func (r *repository) UpdateState(ctx context.Context, orderID uuid.UUID, expected StateGuard, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", orderID, expected.Status, expected.PaymentStatus).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) applyFilters(db *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.UserID != nil {
		db = db.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		db = db.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		db = db.Where("payment_status = ?", *filters.PaymentStatus)
	}
	return db
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, int64, error) {
	params = params.Normalize()
	base := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), filters)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := base.Session(&gorm.Session{}).
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Order("id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

type statusCount struct {
	Status enums.OrderStatus
	Count  int64
}

func (r *repository) CountByStatus(ctx context.Context, userID *uuid.UUID) (map[enums.OrderStatus]int64, error) {
	var rows []statusCount
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), ListFilters{UserID: userID}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumRevenue totals non-cancelled orders. The sum is returned as text so the
// caller can parse it exactly on every driver.
func (r *repository) SumRevenue(ctx context.Context, userID *uuid.UUID) (string, error) {
	var sum sql.NullString
	err := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}), ListFilters{UserID: userID}).
		Where("status <> ?", enums.OrderStatusCancelled).
		Select("CAST(SUM(total_amount) AS TEXT)").
		Row().
		Scan(&sum)
	if err != nil {
		return "", err
	}
	if !sum.Valid || sum.String == "" {
		return "0", nil
	}
	return sum.String, nil
}
