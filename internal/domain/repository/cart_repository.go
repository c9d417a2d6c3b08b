package repository

import (
	"context"

	"libris/internal/domain/entity"
)

// CartRepository mirrors cart state per user namespace. Writes replace the
// whole collection; there are no partial patches.
type CartRepository interface {
	// Load returns the mirrored cart for the namespace. An absent key yields
	// an empty slice, not an error.
	Load(ctx context.Context, namespace string) ([]entity.CartItem, error)

	// Save replaces the mirrored cart for the namespace.
	Save(ctx context.Context, namespace string, items []entity.CartItem) error

	// Clear removes the mirrored cart for the namespace.
	Clear(ctx context.Context, namespace string) error

	// SaveCheckoutHandoff stores the transient book list handed from the
	// cart/detail views to the checkout confirmation step.
	SaveCheckoutHandoff(ctx context.Context, books []entity.Book) error

	// LoadCheckoutHandoff returns the transient checkout book list, or
	// ErrNotFound when none was written.
	LoadCheckoutHandoff(ctx context.Context) ([]entity.Book, error)

	// ClearCheckoutHandoff removes the transient checkout book list.
	ClearCheckoutHandoff(ctx context.Context) error
}
