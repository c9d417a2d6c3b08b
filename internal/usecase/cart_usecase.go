package usecase

import (
	"context"
	"time"

	"libris/internal/domain/entity"
)

// CartUsecase defines cart and checkout operations. Mutations apply
// optimistically and roll back on failure, including add-to-cart; guest carts
// are never allowed to silently diverge from server state.
type CartUsecase interface {
	// Items returns the merged cart: server lines win over the local mirror on
	// ID collision.
	Items(ctx context.Context) ([]entity.CartItem, error)

	// Quantity returns the visible cart badge count.
	Quantity(ctx context.Context) int

	Add(ctx context.Context, book *entity.Book) error
	Remove(ctx context.Context, itemID int64) error
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) error
	Clear(ctx context.Context) error

	// Checkout borrows the selected books, returning the created loans with
	// borrowed-at set to the chosen date and due-at derived from the duration.
	Checkout(ctx context.Context, input *CheckoutInput) ([]entity.Loan, error)
}

// --- Input DTOs ---

// CheckoutInput defines the data required to check out the cart.
type CheckoutInput struct {
	BookIDs      []int64   `json:"book_ids" validate:"required,min=1"`
	BorrowDate   time.Time `json:"borrow_date" validate:"required"`
	DurationDays int       `json:"duration_days" validate:"required,oneof=3 5 10"`
}
