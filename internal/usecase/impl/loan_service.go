package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/domain/service"
	"libris/internal/infra/gateway"
	"libris/internal/infra/querycache"
	"libris/internal/usecase"

	"github.com/pkg/errors"
)

// loanService implements the LoanUsecase interface.
type loanService struct {
	gw       *gateway.Gateway
	cache    *querycache.Cache
	loanRepo repository.LoanRepository
	session  service.SessionState
	logger   *slog.Logger
	now      func() time.Time
}

// NewLoanService is the constructor for loanService.
func NewLoanService(
	gw *gateway.Gateway,
	cache *querycache.Cache,
	loanRepo repository.LoanRepository,
	session service.SessionState,
	logger *slog.Logger,
) usecase.LoanUsecase {
	return &loanService{
		gw:       gw,
		cache:    cache,
		loanRepo: loanRepo,
		session:  session,
		logger:   logger,
		now:      time.Now,
	}
}

// Borrow decrements the book's visible stock before the request is dispatched,
// so the catalog view reflects the borrow immediately. Any failure restores
// the pre-borrow stock and surfaces as insufficient stock.
func (srv *loanService) Borrow(ctx context.Context, bookID int64) error {
	key := bookKey(bookID)

	// Prime the entry so the optimistic apply has a real snapshot to work on.
	book, err := querycache.Fetch(ctx, srv.cache, key, func(ctx context.Context) (entity.Book, error) {
		raw, err := srv.gw.Get(ctx, fmt.Sprintf("/books/%d", bookID))
		if err != nil {
			return entity.Book{}, errors.Wrapf(err, "failed to fetch book %d", bookID)
		}

		return gateway.Decode[entity.Book](raw)
	})
	if err != nil {
		return err
	}
	if book.StockAvailable <= 0 {
		return domainerrors.ErrInsufficientStock
	}

	ns := srv.session.Namespace()
	err = querycache.Mutate(ctx, srv.cache, querycache.Mutation[entity.Book]{
		Key: key,
		Apply: func(prev entity.Book) entity.Book {
			if prev.ID == 0 {
				prev = book
			}
			prev.StockAvailable--

			return prev
		},
		Call: func(ctx context.Context) error {
			_, err := srv.gw.Do(ctx, http.MethodPost, "/loans", map[string]any{"book_id": bookID})

			return err
		},
		Commit:         querycache.InvalidateOnSuccess,
		AlsoInvalidate: []string{myLoansKey(ns), booksKey},
	})
	if err != nil {
		srv.logger.Warn("borrow rolled back", "bookId", bookID, "error", err)

		return domainerrors.ErrInsufficientStock.WrapMessage(err.Error())
	}

	return nil
}

// MyLoans merges the server list with the local mirror and resolves each
// status at read time. A server outage degrades to the mirror alone.
func (srv *loanService) MyLoans(ctx context.Context) ([]entity.Loan, error) {
	ns := srv.session.Namespace()

	loans, err := querycache.Fetch(ctx, srv.cache, myLoansKey(ns), func(ctx context.Context) ([]entity.Loan, error) {
		var server []entity.Loan
		raw, err := srv.gw.Get(ctx, "/loans/my")
		if err != nil {
			srv.logger.Warn("loan list degraded to local mirror", "error", err)
		} else if server, err = gateway.DecodeField[[]entity.Loan](raw, "loans"); err != nil {
			return nil, err
		}

		local, err := srv.loanRepo.Load(ctx, ns)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load mirrored loans")
		}

		return mergeByID(server, local, func(l entity.Loan) int64 { return l.ID }), nil
	})
	if err != nil {
		return nil, err
	}

	// Materialize the derived status into the returned copy only; the cached
	// and mirrored records keep what the backend said.
	now := srv.now()
	out := make([]entity.Loan, len(loans))
	for i, loan := range loans {
		loan.Status = loan.EffectiveStatus(now)
		out[i] = loan
	}

	return out, nil
}

// Return flips the loan to Returned in the visible list before the request is
// dispatched, restoring the previous list on failure.
func (srv *loanService) Return(ctx context.Context, loanID int64) error {
	ns := srv.session.Namespace()

	loans, err := srv.MyLoans(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, loan := range loans {
		if loan.ID == loanID {
			found = true
			if loan.Status == entity.LoanReturned {
				return domainerrors.ErrLoanAlreadyReturned
			}

			break
		}
	}
	if !found {
		return domainerrors.ErrLoanNotFound
	}

	key := myLoansKey(ns)
	err = querycache.Mutate(ctx, srv.cache, querycache.Mutation[[]entity.Loan]{
		Key: key,
		Apply: func(prev []entity.Loan) []entity.Loan {
			next := make([]entity.Loan, len(prev))
			copy(next, prev)
			for i := range next {
				if next[i].ID == loanID {
					next[i].Status = entity.LoanReturned
				}
			}

			return next
		},
		Call: func(ctx context.Context) error {
			_, err := srv.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/loans/%d/return", loanID), nil)

			return err
		},
		// The optimistic list is final; the next catalog read refetches stock.
		Commit:         querycache.KeepOnSuccess,
		AlsoInvalidate: []string{booksKey},
	})
	if err != nil {
		srv.logger.Warn("return rolled back", "loanId", loanID, "error", err)

		return errors.Wrapf(err, "failed to return loan %d", loanID)
	}

	if v, ok := srv.cache.Peek(key); ok {
		if settled, ok := v.([]entity.Loan); ok {
			if err := srv.loanRepo.Save(ctx, ns, settled); err != nil {
				srv.logger.Warn("failed to mirror loans after return", "error", err)
			}
		}
	}

	return nil
}
