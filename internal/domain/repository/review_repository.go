package repository

import (
	"context"

	"libris/internal/domain/entity"
)

// ReviewRepository mirrors the user's own reviews per namespace, so the
// "already reviewed" state is known before any network round-trip completes.
type ReviewRepository interface {
	// Load returns the mirrored reviews for the namespace, probing alternate
	// namespaces the same way LoanRepository.Load does.
	Load(ctx context.Context, namespace string) ([]entity.Review, error)

	// Save replaces the mirrored reviews for the namespace.
	Save(ctx context.Context, namespace string, reviews []entity.Review) error
}
