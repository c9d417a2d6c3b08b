// Package entity contains the core business objects of the storefront,
// each mirroring a resource served by the library backend.
package entity

// BookStatus is the lifecycle state the backend reports for a book copy.
type BookStatus string

const (
	BookAvailable BookStatus = "Available"
	BookBorrowed  BookStatus = "Borrowed"
	BookReturned  BookStatus = "Returned"
	BookDamaged   BookStatus = "Damaged"
)

// AuthorRef is the embedded author reference carried on a book.
type AuthorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is the embedded category reference carried on a book.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is a catalog entry. Immutable from the client's perspective except
// StockAvailable, which borrow flows may optimistically decrement.
type Book struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	Author         AuthorRef   `json:"author"`
	Category       CategoryRef `json:"category"`
	ISBN           string      `json:"isbn"`
	Description    string      `json:"description"`
	StockAvailable int         `json:"stock_available"`
	PublishedYear  int         `json:"published_year"`
	CoverImage     string      `json:"cover_image"`
	Status         BookStatus  `json:"status"`
}

// Author is a full author record from the authors endpoints.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

// Category is a full category record from the categories endpoints.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
