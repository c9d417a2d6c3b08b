package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/service"
	"libris/internal/infra/gateway"
	"libris/internal/infra/querycache"
	"libris/internal/usecase"

	"github.com/pkg/errors"
)

// adminService implements the AdminUsecase interface. Admin writes are plain
// gateway calls followed by cache invalidation; the dashboard tolerates a
// refetch, so nothing applies optimistically here.
type adminService struct {
	gw      *gateway.Gateway
	cache   *querycache.Cache
	session service.SessionState
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdminService is the constructor for adminService.
func NewAdminService(
	gw *gateway.Gateway,
	cache *querycache.Cache,
	session service.SessionState,
	logger *slog.Logger,
) usecase.AdminUsecase {
	return &adminService{
		gw:      gw,
		cache:   cache,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
}

func (srv *adminService) requireAdmin() error {
	profile := srv.session.Profile()
	if profile == nil {
		return domainerrors.ErrNotAuthenticated
	}
	if !profile.Admin {
		return domainerrors.ErrForbidden
	}

	return nil
}

func (srv *adminService) AddBook(ctx context.Context, input *usecase.AddBookInput) (*entity.Book, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	raw, err := srv.gw.Do(ctx, http.MethodPost, "/books", input)
	if err != nil {
		return nil, errors.Wrap(err, "failed to add book")
	}

	book, err := gateway.DecodeField[entity.Book](raw, "book")
	if err != nil {
		return nil, err
	}

	srv.cache.Invalidate(booksKey, recommendKey, overviewKey)
	srv.logger.Info("book added", "bookId", book.ID, "title", book.Title)

	return &book, nil
}

func (srv *adminService) UpdateBook(ctx context.Context, bookID int64, input *usecase.UpdateBookInput) (*entity.Book, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	raw, err := srv.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/books/%d", bookID), input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update book %d", bookID)
	}

	book, err := gateway.DecodeField[entity.Book](raw, "book")
	if err != nil {
		return nil, err
	}

	srv.cache.Invalidate(booksKey, bookKey(bookID), recommendKey)

	return &book, nil
}

func (srv *adminService) DeleteBook(ctx context.Context, bookID int64) error {
	if err := srv.requireAdmin(); err != nil {
		return err
	}

	if _, err := srv.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", bookID), nil); err != nil {
		return errors.Wrapf(err, "failed to delete book %d", bookID)
	}

	srv.cache.Invalidate(booksKey, bookKey(bookID), recommendKey, overviewKey)

	return nil
}

func (srv *adminService) AddAuthor(ctx context.Context, name, bio string) (*entity.Author, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("author name is required")
	}

	raw, err := srv.gw.Do(ctx, http.MethodPost, "/authors", map[string]any{"name": name, "bio": bio})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add author")
	}

	author, err := gateway.DecodeField[entity.Author](raw, "author")
	if err != nil {
		return nil, err
	}

	srv.cache.Invalidate(authorsKey)

	return &author, nil
}

func (srv *adminService) UpdateAuthor(ctx context.Context, authorID int64, name, bio string) (*entity.Author, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}

	raw, err := srv.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/authors/%d", authorID), map[string]any{"name": name, "bio": bio})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update author %d", authorID)
	}

	author, err := gateway.DecodeField[entity.Author](raw, "author")
	if err != nil {
		return nil, err
	}

	srv.cache.Invalidate(authorsKey, authorKey(authorID), authorBooksKey(authorID))

	return &author, nil
}

func (srv *adminService) DeleteAuthor(ctx context.Context, authorID int64) error {
	if err := srv.requireAdmin(); err != nil {
		return err
	}

	if _, err := srv.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/authors/%d", authorID), nil); err != nil {
		return errors.Wrapf(err, "failed to delete author %d", authorID)
	}

	srv.cache.Invalidate(authorsKey, authorKey(authorID), authorBooksKey(authorID))

	return nil
}

func (srv *adminService) AddCategory(ctx context.Context, name string) (*entity.Category, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("category name is required")
	}

	raw, err := srv.gw.Do(ctx, http.MethodPost, "/categories", map[string]any{"name": name})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add category")
	}

	category, err := gateway.DecodeField[entity.Category](raw, "category")
	if err != nil {
		return nil, err
	}

	srv.cache.Invalidate(categoriesKey)

	return &category, nil
}

func (srv *adminService) UpdateCategory(ctx context.Context, categoryID int64, name string) (*entity.Category, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}

	raw, err := srv.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", categoryID), map[string]any{"name": name})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update category %d", categoryID)
	}

	category, err := gateway.DecodeField[entity.Category](raw, "category")
	if err != nil {
		return nil, err
	}

	srv.cache.Invalidate(categoriesKey, categoryKey(categoryID))

	return &category, nil
}

func (srv *adminService) DeleteCategory(ctx context.Context, categoryID int64) error {
	if err := srv.requireAdmin(); err != nil {
		return err
	}

	if _, err := srv.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", categoryID), nil); err != nil {
		return errors.Wrapf(err, "failed to delete category %d", categoryID)
	}

	srv.cache.Invalidate(categoriesKey, categoryKey(categoryID))

	return nil
}

// Loans lists every loan in the system with statuses resolved at read time,
// the same way the member view resolves them.
func (srv *adminService) Loans(ctx context.Context) ([]entity.Loan, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}

	loans, err := querycache.Fetch(ctx, srv.cache, adminLoansKey, func(ctx context.Context) ([]entity.Loan, error) {
		raw, err := srv.gw.Get(ctx, "/admin/loans")
		if err != nil {
			return nil, errors.Wrap(err, "failed to list loans")
		}

		return gateway.DecodeField[[]entity.Loan](raw, "loans")
	})
	if err != nil {
		return nil, err
	}

	now := srv.now()
	out := make([]entity.Loan, len(loans))
	for i, loan := range loans {
		loan.Status = loan.EffectiveStatus(now)
		out[i] = loan
	}

	return out, nil
}

func (srv *adminService) ReturnLoan(ctx context.Context, loanID int64) error {
	if err := srv.requireAdmin(); err != nil {
		return err
	}

	if _, err := srv.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/admin/loans/%d/return", loanID), nil); err != nil {
		return errors.Wrapf(err, "failed to return loan %d", loanID)
	}

	srv.cache.Invalidate(adminLoansKey, booksKey, overviewKey)

	return nil
}

func (srv *adminService) Overview(ctx context.Context) (*usecase.OverviewStats, error) {
	if err := srv.requireAdmin(); err != nil {
		return nil, err
	}

	stats, err := querycache.Fetch(ctx, srv.cache, overviewKey, func(ctx context.Context) (usecase.OverviewStats, error) {
		raw, err := srv.gw.Get(ctx, "/admin/overview")
		if err != nil {
			return usecase.OverviewStats{}, errors.Wrap(err, "failed to fetch overview")
		}

		return gateway.Decode[usecase.OverviewStats](raw)
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
