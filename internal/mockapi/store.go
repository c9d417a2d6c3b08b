package mockapi

import (
	"strconv"
	"sync"
	"time"

	"libris/internal/domain/entity"
)

// account is a registered user. The zero password check is plain equality;
// this server exists to exercise the client, not to be secure.
type account struct {
	ID       int64
	Name     string
	Email    string
	Phone    string
	Password string
	Admin    bool
	Avatar   string
}

type loanRecord struct {
	entity.Loan
	UserID int64
}

type reviewRecord struct {
	entity.Review
	UserID int64
}

type cartLine struct {
	entity.CartItem
	UserID int64
}

// store holds the whole backend state in memory behind one lock. Every
// handler takes the lock for its full duration; contention is irrelevant at
// mock scale.
type store struct {
	mu sync.Mutex

	nextID int64

	accounts   map[int64]*account
	books      map[int64]*entity.Book
	authors    map[int64]*entity.Author
	categories map[int64]*entity.Category
	cart       []*cartLine
	loans      []*loanRecord
	reviews    []*reviewRecord
}

func newStore() *store {
	s := &store{
		nextID:     1000,
		accounts:   make(map[int64]*account),
		books:      make(map[int64]*entity.Book),
		authors:    make(map[int64]*entity.Author),
		categories: make(map[int64]*entity.Category),
	}
	s.seed()

	return s
}

func (s *store) id() int64 {
	s.nextID++

	return s.nextID
}

// seed installs a small catalog and one admin account so the server is usable
// immediately after start.
func (s *store) seed() {
	admin := &account{
		ID:       s.id(),
		Name:     "Admin",
		Email:    "admin@libris.local",
		Phone:    "0000000000",
		Password: "admin12345",
		Admin:    true,
	}
	s.accounts[admin.ID] = admin

	fiction := &entity.Category{ID: s.id(), Name: "Fiction"}
	science := &entity.Category{ID: s.id(), Name: "Science"}
	s.categories[fiction.ID] = fiction
	s.categories[science.ID] = science

	austen := &entity.Author{ID: s.id(), Name: "Jane Austen"}
	sagan := &entity.Author{ID: s.id(), Name: "Carl Sagan"}
	s.authors[austen.ID] = austen
	s.authors[sagan.ID] = sagan

	for _, b := range []*entity.Book{
		{
			Title:          "Pride and Prejudice",
			Author:         entity.AuthorRef{ID: austen.ID, Name: austen.Name},
			Category:       entity.CategoryRef{ID: fiction.ID, Name: fiction.Name},
			ISBN:           "9780141439518",
			StockAvailable: 3,
			PublishedYear:  1813,
			Status:         entity.BookAvailable,
		},
		{
			Title:          "Cosmos",
			Author:         entity.AuthorRef{ID: sagan.ID, Name: sagan.Name},
			Category:       entity.CategoryRef{ID: science.ID, Name: science.Name},
			ISBN:           "9780345539434",
			StockAvailable: 2,
			PublishedYear:  1980,
			Status:         entity.BookAvailable,
		},
	} {
		b.ID = s.id()
		s.books[b.ID] = b
	}
}

func (s *store) findAccountByEmail(email string) *account {
	for _, a := range s.accounts {
		if a.Email == email {
			return a
		}
	}

	return nil
}

func (s *store) userLoans(userID int64) []entity.Loan {
	var out []entity.Loan
	for _, l := range s.loans {
		if l.UserID == userID {
			out = append(out, l.Loan)
		}
	}

	return out
}

func (s *store) userReviews(userID int64) []entity.Review {
	var out []entity.Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, r.Review)
		}
	}

	return out
}

func (s *store) userCart(userID int64) []entity.CartItem {
	var out []entity.CartItem
	for _, line := range s.cart {
		if line.UserID == userID {
			out = append(out, line.CartItem)
		}
	}

	return out
}

// borrow creates a loan and decrements stock, returning false when no stock
// remains.
func (s *store) borrow(userID, bookID int64, borrowedAt time.Time, days int) (entity.Loan, bool) {
	book, ok := s.books[bookID]
	if !ok || book.StockAvailable <= 0 {
		return entity.Loan{}, false
	}

	book.StockAvailable--
	loan := &loanRecord{
		Loan: entity.Loan{
			ID:         s.id(),
			Book:       *book,
			BorrowedAt: borrowedAt,
			DueAt:      borrowedAt.AddDate(0, 0, days),
			Status:     entity.LoanActive,
		},
		UserID: userID,
	}
	s.loans = append(s.loans, loan)

	return loan.Loan, true
}

// returnLoan flips a loan to Returned and restores stock. The second result
// reports whether the loan exists, the third whether it was still open.
func (s *store) returnLoan(loanID int64) (entity.Loan, bool, bool) {
	for _, l := range s.loans {
		if l.ID != loanID {
			continue
		}
		if l.Status == entity.LoanReturned {
			return l.Loan, true, false
		}

		l.Status = entity.LoanReturned
		if book, ok := s.books[l.Book.ID]; ok {
			book.StockAvailable++
		}

		return l.Loan, true, true
	}

	return entity.Loan{}, false, false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
