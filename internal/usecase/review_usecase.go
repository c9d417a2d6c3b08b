package usecase

import (
	"context"

	"libris/internal/domain/entity"
)

// ReviewUsecase defines review operations. At most one review per
// (user, book) pair: Upsert reuses the known review ID so the backend updates
// instead of duplicating.
type ReviewUsecase interface {
	BookReviews(ctx context.Context, bookID int64) ([]entity.Review, error)

	// MyReviews merges the server list with the local mirror, so the
	// "already reviewed" state survives backends without a read endpoint.
	MyReviews(ctx context.Context) ([]entity.Review, error)

	Upsert(ctx context.Context, input *UpsertReviewInput) (*entity.Review, error)
	Delete(ctx context.Context, reviewID int64) error
}

// --- Input DTOs ---

// UpsertReviewInput defines the data required to create or update a review.
type UpsertReviewInput struct {
	BookID  int64  `json:"book_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}
