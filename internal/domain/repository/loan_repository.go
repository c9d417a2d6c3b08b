package repository

import (
	"context"

	"libris/internal/domain/entity"
)

// LoanRepository mirrors loan records per user namespace.
type LoanRepository interface {
	// Load returns the mirrored loans for the namespace. When the namespace
	// key is empty it probes known alternate namespaces (guest, then any other
	// loans key) as a best-effort recovery for records written before the user
	// identity was known. An absent key yields an empty slice.
	Load(ctx context.Context, namespace string) ([]entity.Loan, error)

	// Save replaces the mirrored loans for the namespace.
	Save(ctx context.Context, namespace string, loans []entity.Loan) error
}
