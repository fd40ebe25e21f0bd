package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jewel109/mobiledoor-api/internal/inventory"
	"github.com/jewel109/mobiledoor-api/pkg/db"
	"github.com/jewel109/mobiledoor-api/pkg/db/models"
	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
)

const (
	// MinQuantity and MaxQuantity bound every line, and MaxQuantity also caps
	// the accumulated quantity of one product in a cart.
	MinQuantity = 1
	MaxQuantity = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart mutations for a single user's cart.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

// AddItemInput is the payload for adding a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type service struct {
	repo CartRepository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func validateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between %d and %d", MinQuantity, MaxQuantity)).
			WithDetails(map[string]any{"quantity": quantity})
	}
	return nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return newCartView(record), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.mutate(ctx, userID, nil)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(repo CartRepository, record *models.Cart) error {
		product, err := loadProduct(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}
		if shortage := inventory.Check(product, input.Quantity); shortage != nil {
			return inventory.InsufficientStock(*shortage)
		}

		existing, err := repo.FindItemByProduct(ctx, record.ID, product.ID)
		switch {
		case err == nil:
			next := existing.Quantity + input.Quantity
			if next > MaxQuantity {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, fmt.Sprintf("Maximum %d items per product allowed", MaxQuantity)).
					WithDetails(map[string]any{
						"productId": product.ID,
						"inCart":    existing.Quantity,
						"requested": input.Quantity,
						"max":       MaxQuantity,
					})
			}
			if shortage := inventory.Check(product, next); shortage != nil {
				return inventory.InsufficientStock(*shortage)
			}
			existing.Quantity = next
			existing.Price = product.Price
			if err := repo.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{
				CartID:    record.ID,
				ProductID: product.ID,
				Quantity:  input.Quantity,
				Price:     product.Price,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				if isDuplicateLine(err) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart line changed concurrently, retry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
	})
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartView, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(repo CartRepository, record *models.Cart) error {
		item, err := repo.FindItem(ctx, record.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		product, err := loadProduct(ctx, repo, item.ProductID)
		if err != nil {
			return err
		}
		if shortage := inventory.Check(product, quantity); shortage != nil {
			return inventory.InsufficientStock(*shortage)
		}
		if quantity > item.Quantity {
			item.Price = product.Price
		}
		item.Quantity = quantity
		if err := repo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	return s.mutate(ctx, userID, func(repo CartRepository, record *models.Cart) error {
		removed, err := repo.DeleteItem(ctx, record.ID, itemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		if removed == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
		}
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.mutate(ctx, userID, func(repo CartRepository, record *models.Cart) error {
		if err := repo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
}

// mutate serializes work on one user's cart: the cart row is created if
// needed and locked, fn runs, and the total is re-derived before commit.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(repo CartRepository, record *models.Cart) error) (*CartView, error) {
	var view *CartView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := lockOrCreate(ctx, repo, userID)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(repo, record); err != nil {
				return err
			}
		}
		if err := recalculate(ctx, repo, record.ID); err != nil {
			return err
		}
		loaded, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
		}
		view = newCartView(loaded)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Passthrough(err, "persist cart")
	}
	return view, nil
}

func lockOrCreate(ctx context.Context, repo CartRepository, userID uuid.UUID) (*models.Cart, error) {
	record, err := repo.LockByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	if err := repo.CreateIfMissing(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	record, err = repo.LockByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
	}
	return record, nil
}

// recalculate rewrites the cached total from the current lines.
func recalculate(ctx context.Context, repo CartRepository, cartID uuid.UUID) error {
	items, err := repo.ListItems(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	if err := repo.UpdateTotal(ctx, cartID, SumItems(items)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart total")
	}
	return nil
}

func loadProduct(ctx context.Context, repo CartRepository, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found").
				WithDetails(map[string]any{"productId": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// isDuplicateLine reports a racing insert of the same product into one cart.
func isDuplicateLine(err error) bool {
	return db.IsUniqueViolation(err, "ux_cart_items_cart_product", "cart_items.cart_id", "cart_items.product_id")
}
