package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"libris/internal/domain/entity"
	"libris/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "fallback.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}))

	return db
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	session := &entity.Session{
		Token:   "tok-1",
		Profile: &entity.Profile{ID: "7", Name: "Jane", Email: "jane@x.io"},
	}
	require.NoError(t, repo.Save(ctx, session))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Token)
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, "7", loaded.Profile.ID)

	// Saving again fully replaces the previous session.
	require.NoError(t, repo.Save(ctx, &entity.Session{Token: "tok-2"}))
	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", loaded.Token)
	assert.Nil(t, loaded.Profile, "a tokens-only save must drop the stored profile")

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Clearing twice is fine.
	require.NoError(t, repo.Clear(ctx))
}

func TestCartRepositoryNamespaceIsolation(t *testing.T) {
	repo := NewCartRepository(newTestDB(t))
	ctx := context.Background()

	guestItems := []entity.CartItem{{ID: 1, Book: entity.Book{ID: 10, Title: "A"}, Quantity: 1}}
	userItems := []entity.CartItem{{ID: 2, Book: entity.Book{ID: 20, Title: "B"}, Quantity: 2}}

	require.NoError(t, repo.Save(ctx, entity.GuestNamespace, guestItems))
	require.NoError(t, repo.Save(ctx, "7", userItems))

	got, err := repo.Load(ctx, entity.GuestNamespace)
	require.NoError(t, err)
	assert.Equal(t, guestItems, got)

	got, err = repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, userItems, got)

	// Clearing one namespace must not touch the other.
	require.NoError(t, repo.Clear(ctx, "7"))
	got, err = repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = repo.Load(ctx, entity.GuestNamespace)
	require.NoError(t, err)
	assert.Equal(t, guestItems, got)
}

func TestCartRepositorySaveReplacesWholeCollection(t *testing.T) {
	repo := NewCartRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "7", []entity.CartItem{
		{ID: 1, Quantity: 1},
		{ID: 2, Quantity: 1},
	}))
	require.NoError(t, repo.Save(ctx, "7", []entity.CartItem{
		{ID: 2, Quantity: 3},
	}))

	got, err := repo.Load(ctx, "7")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, 3, got[0].Quantity)
}

func TestCartRepositoryCheckoutHandoff(t *testing.T) {
	repo := NewCartRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.LoadCheckoutHandoff(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	books := []entity.Book{{ID: 1, Title: "Cosmos"}}
	require.NoError(t, repo.SaveCheckoutHandoff(ctx, books))

	got, err := repo.LoadCheckoutHandoff(ctx)
	require.NoError(t, err)
	assert.Equal(t, books, got)

	require.NoError(t, repo.ClearCheckoutHandoff(ctx))
	_, err = repo.LoadCheckoutHandoff(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoanRepositorySurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fallback.db")
	ctx := context.Background()

	loans := []entity.Loan{{
		ID:         1,
		Book:       entity.Book{ID: 10, Title: "Cosmos"},
		BorrowedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueAt:      time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC),
		Status:     entity.LoanActive,
	}}

	open := func() *gorm.DB {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&Record{}))

		return db
	}

	db := open()
	require.NoError(t, NewLoanRepository(db).Save(ctx, "7", loans))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// A fresh handle over the same file sees the mirrored loans.
	got, err := NewLoanRepository(open()).Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, loans, got)
}

func TestLoanRepositoryProbesAlternateNamespaces(t *testing.T) {
	db := newTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	loans := []entity.Loan{{ID: 1, Book: entity.Book{ID: 10}}}

	// Written while the user was still browsing as guest.
	require.NoError(t, repo.Save(ctx, entity.GuestNamespace, loans))

	got, err := repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, loans, got, "a miss on the user namespace must fall back to guest")

	// Once the user namespace exists it takes precedence.
	userLoans := []entity.Loan{{ID: 2, Book: entity.Book{ID: 20}}}
	require.NoError(t, repo.Save(ctx, "7", userLoans))
	got, err = repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, userLoans, got)
}

func TestLoanRepositoryProbesOtherExistingNamespaces(t *testing.T) {
	repo := NewLoanRepository(newTestDB(t))
	ctx := context.Background()

	loans := []entity.Loan{{ID: 3, Book: entity.Book{ID: 30}}}
	require.NoError(t, repo.Save(ctx, "other-user", loans))

	got, err := repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, loans, got, "with no own or guest key, any existing loans key is probed")
}

func TestLoanRepositoryEmptyLoad(t *testing.T) {
	repo := NewLoanRepository(newTestDB(t))

	got, err := repo.Load(context.Background(), "7")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestReviewRepositoryRoundTrip(t *testing.T) {
	repo := NewReviewRepository(newTestDB(t))
	ctx := context.Background()

	reviews := []entity.Review{{ID: 1, Book: entity.Book{ID: 10}, Rating: 4, Comment: "good"}}
	require.NoError(t, repo.Save(ctx, "7", reviews))

	got, err := repo.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, reviews, got)

	// Guest fallback mirrors the loan behavior.
	fresh := NewReviewRepository(newTestDB(t))
	require.NoError(t, fresh.Save(ctx, entity.GuestNamespace, reviews))
	got, err = fresh.Load(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, reviews, got)
}
