package usecase

import (
	"context"

	"libris/internal/domain/entity"
)

// AdminUsecase defines the dashboard operations: inventory, category and
// author CRUD, loan administration, and the overview numbers. These are plain
// gateway calls followed by cache invalidation; no optimistic apply.
type AdminUsecase interface {
	AddBook(ctx context.Context, input *AddBookInput) (*entity.Book, error)
	UpdateBook(ctx context.Context, bookID int64, input *UpdateBookInput) (*entity.Book, error)
	DeleteBook(ctx context.Context, bookID int64) error

	AddAuthor(ctx context.Context, name, bio string) (*entity.Author, error)
	UpdateAuthor(ctx context.Context, authorID int64, name, bio string) (*entity.Author, error)
	DeleteAuthor(ctx context.Context, authorID int64) error

	AddCategory(ctx context.Context, name string) (*entity.Category, error)
	UpdateCategory(ctx context.Context, categoryID int64, name string) (*entity.Category, error)
	DeleteCategory(ctx context.Context, categoryID int64) error

	Loans(ctx context.Context) ([]entity.Loan, error)
	ReturnLoan(ctx context.Context, loanID int64) error

	Overview(ctx context.Context) (*OverviewStats, error)
}

// --- Input DTOs ---

// AddBookInput defines the data required to add a book to the inventory.
type AddBookInput struct {
	Title          string `json:"title" validate:"required"`
	Author         string `json:"author" validate:"required"`
	ISBN           string `json:"isbn" validate:"required"`
	CategoryID     int64  `json:"category_id" validate:"required"`
	Description    string `json:"description,omitempty"`
	StockAvailable int    `json:"stock_available" validate:"min=0"`
	PublishedYear  int    `json:"published_year,omitempty"`
	CoverImage     string `json:"cover_image,omitempty"`
}

// UpdateBookInput defines a partial book update. Nil fields are left unchanged.
type UpdateBookInput struct {
	Title          *string `json:"title,omitempty"`
	Author         *string `json:"author,omitempty"`
	ISBN           *string `json:"isbn,omitempty"`
	CategoryID     *int64  `json:"category_id,omitempty"`
	Description    *string `json:"description,omitempty"`
	StockAvailable *int    `json:"stock_available,omitempty" validate:"omitempty,min=0"`
	PublishedYear  *int    `json:"published_year,omitempty"`
	CoverImage     *string `json:"cover_image,omitempty"`
}

// OverviewStats are the admin dashboard numbers.
type OverviewStats struct {
	TotalBooks   int `json:"total_books"`
	TotalUsers   int `json:"total_users"`
	ActiveLoans  int `json:"active_loans"`
	OverdueLoans int `json:"overdue_loans"`
}
