package usecase

import (
	"context"

	"libris/internal/domain/entity"
)

// LoanUsecase defines borrow and loan operations.
type LoanUsecase interface {
	// Borrow creates a loan for one book, optimistically decrementing the
	// book's visible stock. On failure the stock is restored and the error
	// surfaces as insufficient stock.
	Borrow(ctx context.Context, bookID int64) error

	// MyLoans returns the merged loan list (server wins over the local mirror)
	// with Overdue derived at read time.
	MyLoans(ctx context.Context) ([]entity.Loan, error)

	// Return flips a loan to Returned, optimistically, rolling back on failure.
	Return(ctx context.Context, loanID int64) error
}
