package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jewel109/mobiledoor-api/pkg/db/models"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
)

// Recorder receives unit counts for reservations and releases.
type Recorder interface {
	AddReserved(units int)
	AddReleased(units int)
}

// Ledger owns the stock counter and in_stock flag of each product. Reserve and
// Release must be handed the caller's transaction.
type Ledger struct {
	recorder Recorder
}

// NewLedger builds a ledger. recorder may be nil.
func NewLedger(recorder Recorder) *Ledger {
	return &Ledger{recorder: recorder}
}

// Shortage describes why a quantity cannot be satisfied.
type Shortage struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Available   int       `json:"available"`
	Required    int       `json:"required"`
}

// InsufficientStock builds the typed error for a shortage.
func InsufficientStock(s Shortage) error {
	msg := fmt.Sprintf("Insufficient stock for %s. Available: %d, Required: %d", s.ProductName, s.Available, s.Required)
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).WithDetails(s)
}

// Check reports a shortage for product when qty cannot be served from current
// stock. It never writes.
func Check(product *models.Product, qty int) *Shortage {
	if product == nil {
		return nil
	}
	if product.InStock && product.Stock >= qty {
		return nil
	}
	available := product.Stock
	if !product.InStock {
		available = 0
	}
	return &Shortage{
		ProductID:   product.ID,
		ProductName: product.Name,
		Available:   available,
		Required:    qty,
	}
}

// Lock loads the product row FOR UPDATE inside tx.
func (l *Ledger) Lock(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required for inventory lock")
	}
	var product models.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product")
	}
	return &product, nil
}

// Reserve claims qty units of productID. The returned product reflects the
// row as read under lock, before the decrement.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := l.Lock(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if shortage := Check(product, qty); shortage != nil {
		return nil, InsufficientStock(*shortage)
	}

	// Guarded write: stores that ignore row locks still cannot oversell.
	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND in_stock = ? AND stock >= ?", productID, true, qty).
		Updates(map[string]any{
			"stock":    gorm.Expr("stock - ?", qty),
			"in_stock": gorm.Expr("stock - ? > 0", qty),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve inventory")
	}
	if res.RowsAffected == 0 {
		return nil, InsufficientStock(Shortage{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   0,
			Required:    qty,
		})
	}

	if l.recorder != nil {
		l.recorder.AddReserved(qty)
	}
	return product, nil
}

// Release returns qty units of productID to stock.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required for inventory release")
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{
			"stock":    gorm.Expr("stock + ?", qty),
			"in_stock": gorm.Expr("stock + ? > 0", qty),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"productId": productID})
	}

	if l.recorder != nil {
		l.recorder.AddReleased(qty)
	}
	return nil
}

// ReconcileFlags repairs rows whose in_stock flag disagrees with stock, such
// as products edited directly in the database. It returns the rows fixed.
func (l *Ledger) ReconcileFlags(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "transaction required for inventory reconcile")
	}
	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("in_stock <> (stock > 0)").
		Update("in_stock", gorm.Expr("stock > 0"))
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reconcile stock flags")
	}
	return res.RowsAffected, nil
}
