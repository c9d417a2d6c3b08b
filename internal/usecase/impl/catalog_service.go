package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/infra/gateway"
	"libris/internal/infra/querycache"
	"libris/internal/usecase"

	"github.com/pkg/errors"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	gw     *gateway.Gateway
	cache  *querycache.Cache
	logger *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(
	gw *gateway.Gateway,
	cache *querycache.Cache,
	logger *slog.Logger,
) usecase.CatalogUsecase {
	return &catalogService{
		gw:     gw,
		cache:  cache,
		logger: logger,
	}
}

func (srv *catalogService) ListBooks(ctx context.Context) ([]entity.Book, error) {
	return querycache.Fetch(ctx, srv.cache, booksKey, func(ctx context.Context) ([]entity.Book, error) {
		raw, err := srv.gw.Get(ctx, "/books")
		if err != nil {
			return nil, errors.Wrap(err, "failed to list books")
		}

		return gateway.DecodeField[[]entity.Book](raw, "books")
	})
}

func (srv *catalogService) SearchBooks(ctx context.Context, query string) ([]entity.Book, error) {
	return querycache.Fetch(ctx, srv.cache, searchKey(query), func(ctx context.Context) ([]entity.Book, error) {
		raw, err := srv.gw.Get(ctx, "/books/search?q="+url.QueryEscape(query))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to search books for %q", query)
		}

		return gateway.DecodeField[[]entity.Book](raw, "books")
	})
}

func (srv *catalogService) RecommendedBooks(ctx context.Context) ([]entity.Book, error) {
	return querycache.Fetch(ctx, srv.cache, recommendKey, func(ctx context.Context) ([]entity.Book, error) {
		raw, err := srv.gw.Get(ctx, "/books/recommend")
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch recommendations")
		}

		return gateway.DecodeField[[]entity.Book](raw, "books")
	})
}

func (srv *catalogService) GetBook(ctx context.Context, bookID int64) (*entity.Book, error) {
	book, err := querycache.Fetch(ctx, srv.cache, bookKey(bookID), func(ctx context.Context) (entity.Book, error) {
		raw, err := srv.gw.Get(ctx, fmt.Sprintf("/books/%d", bookID))
		if err != nil {
			return entity.Book{}, errors.Wrapf(err, "failed to fetch book %d", bookID)
		}

		return gateway.Decode[entity.Book](raw)
	})
	if err != nil {
		return nil, err
	}
	if book.ID == 0 {
		return nil, domainerrors.ErrBookNotFound
	}

	return &book, nil
}

func (srv *catalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return querycache.Fetch(ctx, srv.cache, categoriesKey, func(ctx context.Context) ([]entity.Category, error) {
		raw, err := srv.gw.Get(ctx, "/categories")
		if err != nil {
			return nil, errors.Wrap(err, "failed to list categories")
		}

		return gateway.DecodeField[[]entity.Category](raw, "categories")
	})
}

func (srv *catalogService) GetCategory(ctx context.Context, categoryID int64) (*entity.Category, error) {
	category, err := querycache.Fetch(ctx, srv.cache, categoryKey(categoryID), func(ctx context.Context) (entity.Category, error) {
		raw, err := srv.gw.Get(ctx, fmt.Sprintf("/categories/%d", categoryID))
		if err != nil {
			return entity.Category{}, errors.Wrapf(err, "failed to fetch category %d", categoryID)
		}

		return gateway.Decode[entity.Category](raw)
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (srv *catalogService) ListAuthors(ctx context.Context) ([]entity.Author, error) {
	return querycache.Fetch(ctx, srv.cache, authorsKey, func(ctx context.Context) ([]entity.Author, error) {
		raw, err := srv.gw.Get(ctx, "/authors")
		if err != nil {
			return nil, errors.Wrap(err, "failed to list authors")
		}

		return gateway.DecodeField[[]entity.Author](raw, "authors")
	})
}

func (srv *catalogService) GetAuthor(ctx context.Context, authorID int64) (*entity.Author, error) {
	author, err := querycache.Fetch(ctx, srv.cache, authorKey(authorID), func(ctx context.Context) (entity.Author, error) {
		raw, err := srv.gw.Get(ctx, fmt.Sprintf("/authors/%d", authorID))
		if err != nil {
			return entity.Author{}, errors.Wrapf(err, "failed to fetch author %d", authorID)
		}

		return gateway.Decode[entity.Author](raw)
	})
	if err != nil {
		return nil, err
	}

	return &author, nil
}

func (srv *catalogService) AuthorBooks(ctx context.Context, authorID int64) ([]entity.Book, error) {
	return querycache.Fetch(ctx, srv.cache, authorBooksKey(authorID), func(ctx context.Context) ([]entity.Book, error) {
		raw, err := srv.gw.Get(ctx, fmt.Sprintf("/authors/%d/books", authorID))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch books for author %d", authorID)
		}

		return gateway.DecodeField[[]entity.Book](raw, "books")
	})
}
