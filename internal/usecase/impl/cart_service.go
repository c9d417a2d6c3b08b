package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
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

// cartService implements the CartUsecase interface.
type cartService struct {
	gw          *gateway.Gateway
	cache       *querycache.Cache
	cartRepo    repository.CartRepository
	loanRepo    repository.LoanRepository
	session     service.SessionState
	logger      *slog.Logger
	provisional atomic.Int64
}

// NewCartService is the constructor for cartService.
func NewCartService(
	gw *gateway.Gateway,
	cache *querycache.Cache,
	cartRepo repository.CartRepository,
	loanRepo repository.LoanRepository,
	session service.SessionState,
	logger *slog.Logger,
) usecase.CartUsecase {
	return &cartService{
		gw:       gw,
		cache:    cache,
		cartRepo: cartRepo,
		loanRepo: loanRepo,
		session:  session,
		logger:   logger,
	}
}

// Items merges the server cart with the local mirror. A server outage
// degrades to the mirror alone.
func (srv *cartService) Items(ctx context.Context) ([]entity.CartItem, error) {
	ns := srv.session.Namespace()

	return querycache.Fetch(ctx, srv.cache, cartKey(ns), func(ctx context.Context) ([]entity.CartItem, error) {
		var server []entity.CartItem
		raw, err := srv.gw.Get(ctx, "/cart")
		if err != nil {
			srv.logger.Warn("cart degraded to local mirror", "error", err)
		} else if server, err = gateway.DecodeField[[]entity.CartItem](raw, "items"); err != nil {
			return nil, err
		}

		local, err := srv.cartRepo.Load(ctx, ns)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load mirrored cart")
		}

		return mergeByID(server, local, func(it entity.CartItem) int64 { return it.ID }), nil
	})
}

// Quantity returns the badge count without touching the network: the cached
// cart if one exists, otherwise the local mirror.
func (srv *cartService) Quantity(ctx context.Context) int {
	ns := srv.session.Namespace()

	items, ok := srv.peekItems(ns)
	if !ok {
		local, err := srv.cartRepo.Load(ctx, ns)
		if err != nil {
			return 0
		}
		items = local
	}

	total := 0
	for _, it := range items {
		total += it.Quantity
	}

	return total
}

// Add appends a provisional line to the visible cart before the request is
// dispatched. On failure the line is removed again rather than left to
// silently diverge from server state.
func (srv *cartService) Add(ctx context.Context, book *entity.Book) error {
	if book == nil || book.ID == 0 {
		return domainerrors.ErrBookNotFound
	}

	// Prime the entry so the optimistic apply works on the merged cart.
	if _, err := srv.Items(ctx); err != nil {
		return err
	}

	ns := srv.session.Namespace()
	line := entity.CartItem{
		ID:       -srv.provisional.Add(1),
		Book:     *book,
		Quantity: 1,
	}

	err := querycache.Mutate(ctx, srv.cache, querycache.Mutation[[]entity.CartItem]{
		Key: cartKey(ns),
		Apply: func(prev []entity.CartItem) []entity.CartItem {
			next := make([]entity.CartItem, len(prev), len(prev)+1)
			copy(next, prev)
			for i := range next {
				if next[i].Book.ID == book.ID {
					next[i].Quantity++

					return next
				}
			}

			return append(next, line)
		},
		Call: func(ctx context.Context) error {
			_, err := srv.gw.Do(ctx, http.MethodPost, "/cart/items", map[string]any{"book_id": book.ID})

			return err
		},
		Commit: querycache.InvalidateOnSuccess,
	})
	if err != nil {
		srv.logger.Warn("cart add rolled back", "bookId", book.ID, "error", err)

		return errors.Wrapf(err, "failed to add book %d to cart", book.ID)
	}

	srv.mirror(ctx, ns)

	return nil
}

// Remove drops the line from the visible cart before the request is
// dispatched, restoring it on failure.
func (srv *cartService) Remove(ctx context.Context, itemID int64) error {
	items, err := srv.Items(ctx)
	if err != nil {
		return err
	}
	if !containsItem(items, itemID) {
		return domainerrors.ErrCartItemNotFound
	}

	ns := srv.session.Namespace()
	err = querycache.Mutate(ctx, srv.cache, querycache.Mutation[[]entity.CartItem]{
		Key: cartKey(ns),
		Apply: func(prev []entity.CartItem) []entity.CartItem {
			next := make([]entity.CartItem, 0, len(prev))
			for _, it := range prev {
				if it.ID != itemID {
					next = append(next, it)
				}
			}

			return next
		},
		Call: func(ctx context.Context) error {
			_, err := srv.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil)

			return err
		},
		Commit: querycache.KeepOnSuccess,
	})
	if err != nil {
		srv.logger.Warn("cart remove rolled back", "itemId", itemID, "error", err)

		return errors.Wrapf(err, "failed to remove cart item %d", itemID)
	}

	srv.mirror(ctx, ns)

	return nil
}

// UpdateQuantity sets the line quantity optimistically. A quantity of zero
// removes the line.
func (srv *cartService) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("quantity must not be negative")
	}
	if quantity == 0 {
		return srv.Remove(ctx, itemID)
	}

	items, err := srv.Items(ctx)
	if err != nil {
		return err
	}
	if !containsItem(items, itemID) {
		return domainerrors.ErrCartItemNotFound
	}

	ns := srv.session.Namespace()
	err = querycache.Mutate(ctx, srv.cache, querycache.Mutation[[]entity.CartItem]{
		Key: cartKey(ns),
		Apply: func(prev []entity.CartItem) []entity.CartItem {
			next := make([]entity.CartItem, len(prev))
			copy(next, prev)
			for i := range next {
				if next[i].ID == itemID {
					next[i].Quantity = quantity
				}
			}

			return next
		},
		Call: func(ctx context.Context) error {
			_, err := srv.gw.Do(ctx, http.MethodPatch, fmt.Sprintf("/cart/items/%d", itemID), map[string]any{"quantity": quantity})

			return err
		},
		Commit: querycache.KeepOnSuccess,
	})
	if err != nil {
		srv.logger.Warn("cart quantity update rolled back", "itemId", itemID, "error", err)

		return errors.Wrapf(err, "failed to update cart item %d", itemID)
	}

	srv.mirror(ctx, ns)

	return nil
}

// Clear empties the visible cart before the request is dispatched.
func (srv *cartService) Clear(ctx context.Context) error {
	ns := srv.session.Namespace()

	err := querycache.Mutate(ctx, srv.cache, querycache.Mutation[[]entity.CartItem]{
		Key: cartKey(ns),
		Apply: func(prev []entity.CartItem) []entity.CartItem {
			return []entity.CartItem{}
		},
		Call: func(ctx context.Context) error {
			_, err := srv.gw.Do(ctx, http.MethodDelete, "/cart", nil)

			return err
		},
		Commit: querycache.KeepOnSuccess,
	})
	if err != nil {
		srv.logger.Warn("cart clear rolled back", "error", err)

		return errors.Wrap(err, "failed to clear cart")
	}

	if err := srv.cartRepo.Clear(ctx, ns); err != nil {
		srv.logger.Warn("failed to clear mirrored cart", "error", err)
	}

	return nil
}

// Checkout borrows the selected books in one batch. The selected lines leave
// the visible cart before the request is dispatched and come back on failure;
// on success the created loans join the loan mirror immediately so the loans
// view shows them before any refetch.
func (srv *cartService) Checkout(ctx context.Context, input *usecase.CheckoutInput) ([]entity.Loan, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	items, err := srv.Items(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[int64]struct{}, len(input.BookIDs))
	for _, id := range input.BookIDs {
		wanted[id] = struct{}{}
	}

	var selected []entity.Book
	for _, it := range items {
		if _, ok := wanted[it.Book.ID]; ok {
			selected = append(selected, it.Book)
		}
	}
	if len(selected) == 0 {
		return nil, domainerrors.ErrEmptyCheckout
	}

	if err := srv.cartRepo.SaveCheckoutHandoff(ctx, selected); err != nil {
		srv.logger.Warn("failed to persist checkout handoff", "error", err)
	}

	ns := srv.session.Namespace()
	var serverLoans []entity.Loan

	err = querycache.Mutate(ctx, srv.cache, querycache.Mutation[[]entity.CartItem]{
		Key: cartKey(ns),
		Apply: func(prev []entity.CartItem) []entity.CartItem {
			next := make([]entity.CartItem, 0, len(prev))
			for _, it := range prev {
				if _, ok := wanted[it.Book.ID]; !ok {
					next = append(next, it)
				}
			}

			return next
		},
		Call: func(ctx context.Context) error {
			raw, err := srv.gw.Do(ctx, http.MethodPost, "/cart/checkout", map[string]any{
				"book_ids":      input.BookIDs,
				"borrow_date":   input.BorrowDate.Format(time.RFC3339),
				"duration_days": input.DurationDays,
			})
			if err != nil {
				return err
			}
			if decoded, err := gateway.DecodeField[[]entity.Loan](raw, "loans"); err == nil {
				serverLoans = decoded
			}

			return nil
		},
		Commit:         querycache.KeepOnSuccess,
		AlsoInvalidate: []string{myLoansKey(ns), booksKey},
	})
	if err != nil {
		srv.logger.Warn("checkout rolled back", "bookIds", input.BookIDs, "error", err)

		return nil, errors.Wrap(err, "checkout failed")
	}

	loans := serverLoans
	if len(loans) == 0 {
		loans = buildLoans(selected, input)
		// Provisional IDs keep locally built records distinct in the mirror
		// until a server read replaces them.
		for i := range loans {
			loans[i].ID = -srv.provisional.Add(1)
		}
	}

	srv.appendLoanMirror(ctx, ns, loans)
	srv.mirror(ctx, ns)
	if err := srv.cartRepo.ClearCheckoutHandoff(ctx); err != nil {
		srv.logger.Warn("failed to clear checkout handoff", "error", err)
	}

	return loans, nil
}

// buildLoans derives loan records locally when the backend returns none.
func buildLoans(books []entity.Book, input *usecase.CheckoutInput) []entity.Loan {
	loans := make([]entity.Loan, 0, len(books))
	for _, book := range books {
		loans = append(loans, entity.Loan{
			Book:       book,
			BorrowedAt: input.BorrowDate,
			DueAt:      input.BorrowDate.AddDate(0, 0, input.DurationDays),
			Status:     entity.LoanActive,
		})
	}

	return loans
}

// mirror replaces the persisted cart with the settled cache value.
func (srv *cartService) mirror(ctx context.Context, namespace string) {
	items, ok := srv.peekItems(namespace)
	if !ok {
		return
	}

	if err := srv.cartRepo.Save(ctx, namespace, items); err != nil {
		srv.logger.Warn("failed to mirror cart", "error", err)
	}
}

func (srv *cartService) appendLoanMirror(ctx context.Context, namespace string, loans []entity.Loan) {
	existing, err := srv.loanRepo.Load(ctx, namespace)
	if err != nil {
		srv.logger.Warn("failed to load mirrored loans", "error", err)
		existing = nil
	}

	merged := mergeByID(existing, loans, func(l entity.Loan) int64 { return l.ID })
	if err := srv.loanRepo.Save(ctx, namespace, merged); err != nil {
		srv.logger.Warn("failed to mirror loans after checkout", "error", err)
	}
}

func (srv *cartService) peekItems(namespace string) ([]entity.CartItem, bool) {
	v, ok := srv.cache.Peek(cartKey(namespace))
	if !ok {
		return nil, false
	}
	items, ok := v.([]entity.CartItem)

	return items, ok
}

func containsItem(items []entity.CartItem, itemID int64) bool {
	for _, it := range items {
		if it.ID == itemID {
			return true
		}
	}

	return false
}
