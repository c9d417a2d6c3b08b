// Package impl contains the application-specific business rules implementations.
package impl

import "strconv"

// Cache keys carry enough context to disambiguate: the book id for a
// single-book read, the search term for a search, the user namespace for
// "my" collections. Switching context therefore switches keys, so a stale
// in-flight response can never land under the new context's key.

const (
	booksKey      = "books"
	recommendKey  = "books:recommend"
	categoriesKey = "categories"
	authorsKey    = "authors"
	adminLoansKey = "admin:loans"
	overviewKey   = "admin:overview"
)

func bookKey(bookID int64) string {
	return "books:" + strconv.FormatInt(bookID, 10)
}

func searchKey(query string) string {
	return "books:search:" + query
}

func categoryKey(categoryID int64) string {
	return "categories:" + strconv.FormatInt(categoryID, 10)
}

func authorKey(authorID int64) string {
	return "authors:" + strconv.FormatInt(authorID, 10)
}

func authorBooksKey(authorID int64) string {
	return "authors:" + strconv.FormatInt(authorID, 10) + ":books"
}

func cartKey(namespace string) string {
	return "cart:" + namespace
}

func myLoansKey(namespace string) string {
	return "loans:my:" + namespace
}

func myReviewsKey(namespace string) string {
	return "reviews:my:" + namespace
}

func bookReviewsKey(bookID int64) string {
	return "reviews:book:" + strconv.FormatInt(bookID, 10)
}
