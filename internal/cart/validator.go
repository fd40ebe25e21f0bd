package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewel109/mobiledoor-api/internal/inventory"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
)

const reasonEmptyCart = "Cart is empty"

// CheckoutValidation is the outcome of a read-only purchasability check.
type CheckoutValidation struct {
	Valid    bool                `json:"valid"`
	Reason   string              `json:"reason,omitempty"`
	Shortage *inventory.Shortage `json:"shortage,omitempty"`
	Cart     *CartView           `json:"cart,omitempty"`
}

// Err converts a failed validation into the matching typed error.
func (v *CheckoutValidation) Err() error {
	if v == nil || v.Valid {
		return nil
	}
	if v.Shortage != nil {
		return inventory.InsufficientStock(*v.Shortage)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, v.Reason)
}

// Validator checks that every line of a user's cart can still be bought. It
// reads outside any transaction; checkout repeats the check under lock.
type Validator struct {
	repo CartRepository
}

// NewValidator builds a validator.
func NewValidator(repo CartRepository) (*Validator, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &Validator{repo: repo}, nil
}

func (v *Validator) ValidateForCheckout(ctx context.Context, userID uuid.UUID) (*CheckoutValidation, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := v.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CheckoutValidation{Valid: false, Reason: reasonEmptyCart}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return &CheckoutValidation{Valid: false, Reason: reasonEmptyCart}, nil
	}

	for _, item := range record.Items {
		if item.Product == nil {
			return &CheckoutValidation{
				Valid:  false,
				Reason: fmt.Sprintf("Product %s is no longer available", item.ProductID),
				Shortage: &inventory.Shortage{
					ProductID: item.ProductID,
					Required:  item.Quantity,
				},
			}, nil
		}
		if shortage := inventory.Check(item.Product, item.Quantity); shortage != nil {
			return &CheckoutValidation{
				Valid:    false,
				Reason:   fmt.Sprintf("Insufficient stock for %s. Available: %d, Required: %d", shortage.ProductName, shortage.Available, shortage.Required),
				Shortage: shortage,
			}, nil
		}
	}

	return &CheckoutValidation{Valid: true, Cart: newCartView(record)}, nil
}
