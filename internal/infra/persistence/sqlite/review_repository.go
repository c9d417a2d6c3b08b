package sqlite

import (
	"context"

	"libris/internal/domain/entity"
	"libris/internal/domain/repository"
	"libris/internal/errors"

	"gorm.io/gorm"
)

const reviewKeyPrefix = "reviews:"

// reviewRepository mirrors the user's own reviews per namespace.
type reviewRepository struct {
	kv
}

// NewReviewRepository is the constructor for reviewRepository.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{kv{db: db}}
}

func (repo *reviewRepository) Load(ctx context.Context, namespace string) ([]entity.Review, error) {
	var reviews []entity.Review
	for _, key := range probeKeys(ctx, repo.kv, reviewKeyPrefix, namespace) {
		err := repo.getJSON(ctx, key, &reviews)
		if err == nil {
			return reviews, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	return []entity.Review{}, nil
}

func (repo *reviewRepository) Save(ctx context.Context, namespace string, reviews []entity.Review) error {
	return repo.putJSON(ctx, reviewKeyPrefix+namespace, reviews)
}
