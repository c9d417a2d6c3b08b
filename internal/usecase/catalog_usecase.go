// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"libris/internal/domain/entity"
)

// CatalogUsecase defines the read operations over the book catalog. All reads
// go through the query cache with keys scoped per resource and search term.
type CatalogUsecase interface {
	ListBooks(ctx context.Context) ([]entity.Book, error)
	SearchBooks(ctx context.Context, query string) ([]entity.Book, error)
	RecommendedBooks(ctx context.Context) ([]entity.Book, error)
	GetBook(ctx context.Context, bookID int64) (*entity.Book, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	GetCategory(ctx context.Context, categoryID int64) (*entity.Category, error)
	ListAuthors(ctx context.Context) ([]entity.Author, error)
	GetAuthor(ctx context.Context, authorID int64) (*entity.Author, error)
	AuthorBooks(ctx context.Context, authorID int64) ([]entity.Book, error)
}
