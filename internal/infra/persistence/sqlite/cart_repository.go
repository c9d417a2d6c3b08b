package sqlite

import (
	"context"

	"libris/internal/domain/entity"
	"libris/internal/domain/repository"
	"libris/internal/errors"

	"gorm.io/gorm"
)

const (
	cartKeyPrefix      = "cart_items:"
	checkoutHandoffKey = "checkout_borrow_books"
)

// cartRepository mirrors cart contents per user namespace.
type cartRepository struct {
	kv
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{kv{db: db}}
}

func (repo *cartRepository) Load(ctx context.Context, namespace string) ([]entity.CartItem, error) {
	var items []entity.CartItem
	err := repo.getJSON(ctx, cartKeyPrefix+namespace, &items)
	if errors.Is(err, repository.ErrNotFound) {
		return []entity.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (repo *cartRepository) Save(ctx context.Context, namespace string, items []entity.CartItem) error {
	return repo.putJSON(ctx, cartKeyPrefix+namespace, items)
}

func (repo *cartRepository) Clear(ctx context.Context, namespace string) error {
	return repo.delete(ctx, cartKeyPrefix+namespace)
}

func (repo *cartRepository) SaveCheckoutHandoff(ctx context.Context, books []entity.Book) error {
	return repo.putJSON(ctx, checkoutHandoffKey, books)
}

func (repo *cartRepository) LoadCheckoutHandoff(ctx context.Context) ([]entity.Book, error) {
	var books []entity.Book
	if err := repo.getJSON(ctx, checkoutHandoffKey, &books); err != nil {
		return nil, err
	}

	return books, nil
}

func (repo *cartRepository) ClearCheckoutHandoff(ctx context.Context) error {
	return repo.delete(ctx, checkoutHandoffKey)
}
