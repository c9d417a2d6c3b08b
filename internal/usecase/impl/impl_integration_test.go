package impl

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"libris/config"
	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/infra/auth"
	"libris/internal/infra/gateway"
	"libris/internal/infra/persistence/sqlite"
	"libris/internal/infra/querycache"
	"libris/internal/mockapi"
	"libris/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "integration-test-secret"

// env is one fully wired client talking to an in-process mock backend.
type env struct {
	store    *auth.SessionStore
	cache    *querycache.Cache
	sessions usecase.SessionUsecase
	catalog  usecase.CatalogUsecase
	cart     usecase.CartUsecase
	loans    usecase.LoanUsecase
	reviews  usecase.ReviewUsecase
	admin    usecase.AdminUsecase

	sessionRepo repository.SessionRepository
	cartRepo    repository.CartRepository
	loanRepo    repository.LoanRepository
	reviewRepo  repository.ReviewRepository
}

// newEnv starts a mock backend and builds the client stack against it. The
// backend and database outlive individual env instances, so a second env over
// the same backing can simulate a process restart.
func newEnv(t *testing.T, baseURL string, db *gorm.DB) *env {
	t.Helper()

	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second
	cfg.Cache.TTL = time.Minute

	log := slog.New(slog.NewTextHandler(testWriter{t}, nil))

	store := auth.NewSessionStore()
	gw := gateway.New(gateway.Params{Config: cfg, Tokens: store, Logger: log})
	cache := querycache.New(querycache.Params{Config: cfg, Logger: log})

	sessionRepo := sqlite.NewSessionRepository(db)
	cartRepo := sqlite.NewCartRepository(db)
	loanRepo := sqlite.NewLoanRepository(db)
	reviewRepo := sqlite.NewReviewRepository(db)

	return &env{
		store:       store,
		cache:       cache,
		sessions:    NewSessionService(gw, cache, store, sessionRepo, cartRepo, log),
		catalog:     NewCatalogService(gw, cache, log),
		cart:        NewCartService(gw, cache, cartRepo, loanRepo, store, log),
		loans:       NewLoanService(gw, cache, loanRepo, store, log),
		reviews:     NewReviewService(gw, cache, reviewRepo, store, log),
		admin:       NewAdminService(gw, cache, store, log),
		sessionRepo: sessionRepo,
		cartRepo:    cartRepo,
		loanRepo:    loanRepo,
		reviewRepo:  reviewRepo,
	}
}

func startBackend(t *testing.T) string {
	t.Helper()

	cfg := &config.Config{}
	cfg.MockAPI = &config.MockAPIConfig{Port: 0, JWTSecret: testJWTSecret}

	server, err := mockapi.NewServer(mockapi.Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return ts.URL
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlitedriver.Open(filepath.Join(t.TempDir(), "fallback.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sqlite.Record{}))

	return db
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))

	return len(p), nil
}

func registerUser(t *testing.T, e *env, name, email string) *entity.Profile {
	t.Helper()

	profile, err := e.sessions.Register(context.Background(), &usecase.RegisterInput{
		Name:     name,
		Email:    email,
		Phone:    "0912345678",
		Password: "password123",
	})
	require.NoError(t, err)

	return profile
}

func loginAdmin(t *testing.T, e *env) *entity.Profile {
	t.Helper()

	profile, err := e.sessions.Login(context.Background(), &usecase.LoginInput{
		Email:    "admin@libris.local",
		Password: "admin12345",
	})
	require.NoError(t, err)
	require.True(t, profile.Admin)

	return profile
}

func firstBook(t *testing.T, e *env) entity.Book {
	t.Helper()

	books, err := e.catalog.ListBooks(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, books)

	return books[0]
}

// --- Session lifecycle ---

func TestSessionLifecycle(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)

	profile := registerUser(t, e, "jane doe", "jane@x.io")
	// The backend returns the profile in its renamed nested shape; the client
	// normalizes, including title-casing the name.
	assert.Equal(t, "Jane Doe", profile.Name)
	assert.NotEmpty(t, profile.ID)
	assert.Equal(t, profile, e.sessions.Current())

	// A fresh stack over the same fallback store resumes the session.
	restarted := newEnv(t, baseURL, db)
	resumed, err := restarted.sessions.Resume(ctx)
	require.NoError(t, err)
	require.NotNil(t, resumed)
	assert.Equal(t, profile.ID, resumed.ID)
	assert.Equal(t, profile.ID, restarted.store.Namespace())

	require.NoError(t, restarted.sessions.Logout(ctx))
	assert.Nil(t, restarted.sessions.Current())
	assert.Equal(t, entity.GuestNamespace, restarted.store.Namespace())

	// After logout nothing is left to resume.
	again := newEnv(t, baseURL, db)
	resumed, err = again.sessions.Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, resumed)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t, startBackend(t), newTestDB(t))

	_, err := e.sessions.Login(context.Background(), &usecase.LoginInput{
		Email:    "admin@libris.local",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestResumeDiscardsExpiredToken(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1001",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	require.NoError(t, e.sessionRepo.Save(ctx, &entity.Session{
		Token:   expired,
		Profile: &entity.Profile{ID: "1001", Name: "Stale"},
	}))

	resumed, err := e.sessions.Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, resumed, "an expired token must resolve to a guest session")

	_, err = e.sessionRepo.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound, "the dead session must be cleared")
}

func TestResumeDiscardsRejectedToken(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)

	// Valid-looking token for an account the backend does not know.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "424242",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	require.NoError(t, e.sessionRepo.Save(ctx, &entity.Session{Token: forged}))

	resumed, err := e.sessions.Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, resumed)
}

func TestUpdateProfilePersists(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "sam lee", "sam@x.io")

	newName := "samantha lee"
	updated, err := e.sessions.UpdateProfile(ctx, &usecase.UpdateProfileInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Samantha Lee", updated.Name)

	session, err := e.sessionRepo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session.Profile)
	assert.Equal(t, "Samantha Lee", session.Profile.Name)
}

// --- Borrow and loans ---

func TestBorrowDecrementsStockAndFailsWhenExhausted(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "reader one", "r1@x.io")

	books, err := e.catalog.ListBooks(ctx)
	require.NoError(t, err)

	var book entity.Book
	for _, b := range books {
		if b.StockAvailable == 2 {
			book = b
		}
	}
	require.NotZero(t, book.ID, "seed data should include a book with two copies")

	require.NoError(t, e.loans.Borrow(ctx, book.ID))
	require.NoError(t, e.loans.Borrow(ctx, book.ID))

	err = e.loans.Borrow(ctx, book.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientStock)

	loans, err := e.loans.MyLoans(ctx)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
	for _, loan := range loans {
		assert.Equal(t, entity.LoanActive, loan.Status)
	}
}

func TestReturnFlipsLoanAndRejectsDoubleReturn(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "reader two", "r2@x.io")

	book := firstBook(t, e)
	require.NoError(t, e.loans.Borrow(ctx, book.ID))

	loans, err := e.loans.MyLoans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)

	require.NoError(t, e.loans.Return(ctx, loans[0].ID))

	loans, err = e.loans.MyLoans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, entity.LoanReturned, loans[0].Status)

	err = e.loans.Return(ctx, loans[0].ID)
	assert.ErrorIs(t, err, domainerrors.ErrLoanAlreadyReturned)

	err = e.loans.Return(ctx, 999999)
	assert.ErrorIs(t, err, domainerrors.ErrLoanNotFound)
}

// --- Cart ---

func TestCartAddRollsBackWhenBackendRejects(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "shopper", "shop@x.io")

	ghost := &entity.Book{ID: 999999, Title: "No Such Book"}
	err := e.cart.Add(ctx, ghost)
	require.Error(t, err)

	items, err := e.cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "a rejected add must leave no phantom line behind")
	assert.Zero(t, e.cart.Quantity(ctx))
}

func TestCartFlowAndCheckout(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "shopper two", "shop2@x.io")

	book := firstBook(t, e)
	require.NoError(t, e.cart.Add(ctx, &book))

	items, err := e.cart.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, book.ID, items[0].Book.ID)
	assert.Equal(t, 1, e.cart.Quantity(ctx))

	borrowDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	loans, err := e.cart.Checkout(ctx, &usecase.CheckoutInput{
		BookIDs:      []int64{book.ID},
		BorrowDate:   borrowDate,
		DurationDays: 5,
	})
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.True(t, loans[0].DueAt.Equal(borrowDate.AddDate(0, 0, 5)),
		"due date must be borrow date plus duration, got %s", loans[0].DueAt)

	items, err = e.cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items, "checked out books must leave the cart")

	myLoans, err := e.loans.MyLoans(ctx)
	require.NoError(t, err)
	require.Len(t, myLoans, 1)
	assert.Equal(t, entity.LoanActive, myLoans[0].Status)
}

func TestCheckoutValidatesInput(t *testing.T) {
	e := newEnv(t, startBackend(t), newTestDB(t))
	ctx := context.Background()
	registerUser(t, e, "shopper three", "shop3@x.io")

	_, err := e.cart.Checkout(ctx, &usecase.CheckoutInput{
		BookIDs:      []int64{1},
		BorrowDate:   time.Now(),
		DurationDays: 7,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed, "7 days is not an allowed duration")

	_, err = e.cart.Checkout(ctx, &usecase.CheckoutInput{
		BookIDs:      []int64{123456},
		BorrowDate:   time.Now(),
		DurationDays: 5,
	})
	assert.ErrorIs(t, err, domainerrors.ErrEmptyCheckout, "selecting books not in the cart checks out nothing")
}

func TestCartQuantityWorksOffline(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	// Mirror written by an earlier run.
	cartRepo := sqlite.NewCartRepository(db)
	require.NoError(t, cartRepo.Save(ctx, entity.GuestNamespace, []entity.CartItem{
		{ID: 1, Book: entity.Book{ID: 10}, Quantity: 2},
		{ID: 2, Book: entity.Book{ID: 20}, Quantity: 1},
	}))

	// Fresh stack, nothing cached, backend never consulted for the badge.
	e := newEnv(t, baseURL, db)
	assert.Equal(t, 3, e.cart.Quantity(ctx))
}

// --- Reviews ---

func TestReviewUpsertIsIdempotentPerBook(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "critic", "critic@x.io")

	book := firstBook(t, e)

	first, err := e.reviews.Upsert(ctx, &usecase.UpsertReviewInput{
		BookID:  book.ID,
		Rating:  4,
		Comment: "solid",
	})
	require.NoError(t, err)

	second, err := e.reviews.Upsert(ctx, &usecase.UpsertReviewInput{
		BookID:  book.ID,
		Rating:  5,
		Comment: "on reread, excellent",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "a second write must update, not duplicate")

	mine, err := e.reviews.MyReviews(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 5, mine[0].Rating)

	bookReviews, err := e.reviews.BookReviews(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, bookReviews, 1)
}

func TestReviewDelete(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	registerUser(t, e, "critic two", "critic2@x.io")

	book := firstBook(t, e)
	review, err := e.reviews.Upsert(ctx, &usecase.UpsertReviewInput{BookID: book.ID, Rating: 3})
	require.NoError(t, err)

	require.NoError(t, e.reviews.Delete(ctx, review.ID))

	mine, err := e.reviews.MyReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)

	err = e.reviews.Delete(ctx, review.ID)
	assert.ErrorIs(t, err, domainerrors.ErrReviewNotFound)
}

func TestReviewUpsertValidatesRating(t *testing.T) {
	e := newEnv(t, startBackend(t), newTestDB(t))

	_, err := e.reviews.Upsert(context.Background(), &usecase.UpsertReviewInput{BookID: 1, Rating: 6})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

// --- Admin ---

func TestAdminRequiresAdminAccount(t *testing.T) {
	e := newEnv(t, startBackend(t), newTestDB(t))
	ctx := context.Background()

	_, err := e.admin.Overview(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrNotAuthenticated)

	registerUser(t, e, "plain member", "member@x.io")
	_, err = e.admin.Overview(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestAdminInventoryFlow(t *testing.T) {
	baseURL := startBackend(t)
	db := newTestDB(t)
	ctx := context.Background()

	e := newEnv(t, baseURL, db)
	loginAdmin(t, e)

	categories, err := e.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	before, err := e.catalog.ListBooks(ctx)
	require.NoError(t, err)

	book, err := e.admin.AddBook(ctx, &usecase.AddBookInput{
		Title:          "The Left Hand of Darkness",
		Author:         "Ursula K. Le Guin",
		ISBN:           "9780441478125",
		CategoryID:     categories[0].ID,
		StockAvailable: 4,
		PublishedYear:  1969,
	})
	require.NoError(t, err)
	require.NotZero(t, book.ID)

	// The list was invalidated; the next read sees the new book.
	after, err := e.catalog.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	newStock := 2
	updated, err := e.admin.UpdateBook(ctx, book.ID, &usecase.UpdateBookInput{StockAvailable: &newStock})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.StockAvailable)

	stats, err := e.admin.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(after), stats.TotalBooks)

	require.NoError(t, e.admin.DeleteBook(ctx, book.ID))
	final, err := e.catalog.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, final, len(before))
}

func TestAdminLoanAdministration(t *testing.T) {
	baseURL := startBackend(t)
	ctx := context.Background()

	// A member borrows...
	memberEnv := newEnv(t, baseURL, newTestDB(t))
	registerUser(t, memberEnv, "member", "m@x.io")
	book := firstBook(t, memberEnv)
	require.NoError(t, memberEnv.loans.Borrow(ctx, book.ID))

	// ...and the admin sees and closes the loan.
	adminEnv := newEnv(t, baseURL, newTestDB(t))
	loginAdmin(t, adminEnv)

	loans, err := adminEnv.admin.Loans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, entity.LoanActive, loans[0].Status)

	require.NoError(t, adminEnv.admin.ReturnLoan(ctx, loans[0].ID))

	loans, err = adminEnv.admin.Loans(ctx)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, entity.LoanReturned, loans[0].Status)
}

// --- Merge rule ---

func TestMergeByIDServerWins(t *testing.T) {
	type rec struct {
		ID    int64
		Where string
	}

	server := []rec{{1, "server"}, {2, "server"}}
	local := []rec{{2, "local"}, {3, "local"}}

	merged := mergeByID(server, local, func(r rec) int64 { return r.ID })
	require.Len(t, merged, 3)
	assert.Equal(t, "server", merged[0].Where)
	assert.Equal(t, "server", merged[1].Where, "server wins on id collision")
	assert.Equal(t, "local", merged[2].Where, "local-only records append after")
}
