package mockapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"libris/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "name, email and password are required")
	}

	s.store.mu.Lock()
	if s.store.findAccountByEmail(req.Email) != nil {
		s.store.mu.Unlock()

		return fail(c, http.StatusConflict, "CONFLICT", "email already registered")
	}
	a := &account{
		ID:       s.store.id(),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	s.store.accounts[a.ID] = a
	s.store.mu.Unlock()

	token, err := s.issueToken(a)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to sign token")
	}

	// Registration answers bare with the legacy field name.
	return c.JSON(http.StatusCreated, map[string]string{"access_token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
	}

	s.store.mu.Lock()
	a := s.store.findAccountByEmail(req.Email)
	s.store.mu.Unlock()
	if a == nil || a.Password != req.Password {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "wrong email or password")
	}

	token, err := s.issueToken(a)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to sign token")
	}

	return ok(c, http.StatusOK, map[string]string{"token": token}, "logged in")
}

func (s *Server) logout(c echo.Context) error {
	// Stateless tokens; nothing to revoke. 204 exercises the empty-body path.
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) forgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "email is required")
	}

	return ok(c, http.StatusOK, nil, "reset email sent")
}

// profile answers in the modern nested shape with renamed fields; the client's
// normalization absorbs it.
func (s *Server) profile(c echo.Context) error {
	a := s.currentAccount(c)
	if a == nil {
		return fail(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "no session")
	}

	user := map[string]any{
		"user_id":      formatID(a.ID),
		"full_name":    a.Name,
		"email":        a.Email,
		"phone_number": a.Phone,
		"avatar_url":   a.Avatar,
	}
	if a.Admin {
		user["role"] = "admin"
	}

	return ok(c, http.StatusOK, map[string]any{"user": user}, "")
}

// legacyProfile answers bare with canonical field names, the shape older
// clients were written against.
func (s *Server) legacyProfile(c echo.Context) error {
	a := s.currentAccount(c)
	if a == nil {
		return fail(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "no session")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":       formatID(a.ID),
		"name":     a.Name,
		"email":    a.Email,
		"phone":    a.Phone,
		"avatar":   a.Avatar,
		"is_admin": a.Admin,
	})
}

func (s *Server) updateProfile(c echo.Context) error {
	a := s.currentAccount(c)
	if a == nil {
		return fail(c, http.StatusUnauthorized, "NOT_AUTHENTICATED", "no session")
	}

	var req struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Avatar *string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
	}

	s.store.mu.Lock()
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}
	if req.Avatar != nil {
		a.Avatar = *req.Avatar
	}
	s.store.mu.Unlock()

	// Acknowledge without echoing the profile; the client refetches.
	return ok(c, http.StatusOK, nil, "profile updated")
}

// --- Catalog ---

func (s *Server) listBooks(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return ok(c, http.StatusOK, map[string]any{"books": sortedBooks(s.store.books)}, "")
}

func (s *Server) searchBooks(c echo.Context) error {
	q := strings.ToLower(c.QueryParam("q"))

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var hits []entity.Book
	for _, b := range sortedBooks(s.store.books) {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author.Name), q) ||
			strings.Contains(b.ISBN, q) {
			hits = append(hits, b)
		}
	}

	// Search nests the array directly under data, not under a "books" field.
	return ok(c, http.StatusOK, hits, "")
}

func (s *Server) recommendBooks(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var picks []entity.Book
	for _, b := range sortedBooks(s.store.books) {
		if b.StockAvailable > 0 {
			picks = append(picks, b)
		}
		if len(picks) == 5 {
			break
		}
	}

	return ok(c, http.StatusOK, map[string]any{"books": picks}, "")
}

func (s *Server) getBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid book id")
	}

	s.store.mu.Lock()
	book, found := s.store.books[id]
	s.store.mu.Unlock()
	if !found {
		return fail(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	}

	// The detail endpoint answers bare, with no envelope.
	return c.JSON(http.StatusOK, book)
}

func (s *Server) bookReviews(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid book id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var out []entity.Review
	for _, r := range s.store.reviews {
		if r.Book.ID == id {
			out = append(out, r.Review)
		}
	}

	return ok(c, http.StatusOK, map[string]any{"reviews": out}, "")
}

type bookRequest struct {
	Title          *string `json:"title"`
	Author         *string `json:"author"`
	ISBN           *string `json:"isbn"`
	CategoryID     *int64  `json:"category_id"`
	Description    *string `json:"description"`
	StockAvailable *int    `json:"stock_available"`
	PublishedYear  *int    `json:"published_year"`
	CoverImage     *string `json:"cover_image"`
}

func (s *Server) addBook(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
	}
	if req.Title == nil || req.Author == nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "title and author are required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	book := &entity.Book{
		ID:     s.store.id(),
		Title:  *req.Title,
		Status: entity.BookAvailable,
	}
	book.Author = s.store.resolveAuthor(*req.Author)
	applyBookRequest(book, &req, s.store)
	s.store.books[book.ID] = book

	return ok(c, http.StatusCreated, map[string]any{"book": book}, "book added")
}

func (s *Server) updateBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid book id")
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	book, found := s.store.books[id]
	if !found {
		return fail(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = s.store.resolveAuthor(*req.Author)
	}
	applyBookRequest(book, &req, s.store)

	return ok(c, http.StatusOK, map[string]any{"book": book}, "book updated")
}

func (s *Server) deleteBook(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid book id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.books[id]; !found {
		return fail(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	}
	delete(s.store.books, id)

	return c.NoContent(http.StatusNoContent)
}

// --- Categories ---

func (s *Server) listCategories(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]entity.Category, 0, len(s.store.categories))
	for _, cat := range s.store.categories {
		out = append(out, *cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return ok(c, http.StatusOK, map[string]any{"categories": out}, "")
}

func (s *Server) getCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid category id")
	}

	s.store.mu.Lock()
	cat, found := s.store.categories[id]
	s.store.mu.Unlock()
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "category not found")
	}

	return ok(c, http.StatusOK, cat, "")
}

func (s *Server) addCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "name is required")
	}

	s.store.mu.Lock()
	cat := &entity.Category{ID: s.store.id(), Name: req.Name}
	s.store.categories[cat.ID] = cat
	s.store.mu.Unlock()

	return ok(c, http.StatusCreated, map[string]any{"category": cat}, "category added")
}

func (s *Server) updateCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid category id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "name is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	cat, found := s.store.categories[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "category not found")
	}
	cat.Name = req.Name

	return ok(c, http.StatusOK, map[string]any{"category": cat}, "category updated")
}

func (s *Server) deleteCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid category id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.categories[id]; !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "category not found")
	}
	delete(s.store.categories, id)

	return c.NoContent(http.StatusNoContent)
}

// --- Authors ---

func (s *Server) listAuthors(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]entity.Author, 0, len(s.store.authors))
	for _, a := range s.store.authors {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return ok(c, http.StatusOK, map[string]any{"authors": out}, "")
}

func (s *Server) getAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid author id")
	}

	s.store.mu.Lock()
	author, found := s.store.authors[id]
	s.store.mu.Unlock()
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "author not found")
	}

	return ok(c, http.StatusOK, author, "")
}

func (s *Server) authorBooks(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid author id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var out []entity.Book
	for _, b := range sortedBooks(s.store.books) {
		if b.Author.ID == id {
			out = append(out, b)
		}
	}

	return ok(c, http.StatusOK, map[string]any{"books": out}, "")
}

func (s *Server) addAuthor(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "name is required")
	}

	s.store.mu.Lock()
	author := &entity.Author{ID: s.store.id(), Name: req.Name, Bio: req.Bio}
	s.store.authors[author.ID] = author
	s.store.mu.Unlock()

	return ok(c, http.StatusCreated, map[string]any{"author": author}, "author added")
}

func (s *Server) updateAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid author id")
	}

	var req struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid request body")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	author, found := s.store.authors[id]
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "author not found")
	}
	if req.Name != "" {
		author.Name = req.Name
	}
	author.Bio = req.Bio

	return ok(c, http.StatusOK, map[string]any{"author": author}, "author updated")
}

func (s *Server) deleteAuthor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid author id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, found := s.store.authors[id]; !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "author not found")
	}
	delete(s.store.authors, id)

	return c.NoContent(http.StatusNoContent)
}

// --- Cart ---

func (s *Server) getCart(c echo.Context) error {
	a := s.currentAccount(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return ok(c, http.StatusOK, map[string]any{"items": s.store.userCart(a.ID)}, "")
}

func (s *Server) addCartItem(c echo.Context) error {
	a := s.currentAccount(c)

	var req struct {
		BookID int64 `json:"book_id"`
	}
	if err := c.Bind(&req); err != nil || req.BookID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "book_id is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	book, found := s.store.books[req.BookID]
	if !found {
		return fail(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	}
	if book.StockAvailable <= 0 {
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "insufficient stock")
	}

	for _, line := range s.store.cart {
		if line.UserID == a.ID && line.Book.ID == req.BookID {
			line.Quantity++

			return ok(c, http.StatusOK, map[string]any{"item": line.CartItem}, "quantity increased")
		}
	}

	line := &cartLine{
		CartItem: entity.CartItem{ID: s.store.id(), Book: *book, Quantity: 1},
		UserID:   a.ID,
	}
	s.store.cart = append(s.store.cart, line)

	return ok(c, http.StatusCreated, map[string]any{"item": line.CartItem}, "added to cart")
}

func (s *Server) updateCartItem(c echo.Context) error {
	a := s.currentAccount(c)
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid item id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity < 1 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "quantity must be positive")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, line := range s.store.cart {
		if line.UserID == a.ID && line.ID == id {
			line.Quantity = req.Quantity

			return ok(c, http.StatusOK, map[string]any{"item": line.CartItem}, "quantity updated")
		}
	}

	return fail(c, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "cart item not found")
}

func (s *Server) removeCartItem(c echo.Context) error {
	a := s.currentAccount(c)
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid item id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for i, line := range s.store.cart {
		if line.UserID == a.ID && line.ID == id {
			s.store.cart = append(s.store.cart[:i], s.store.cart[i+1:]...)

			return c.NoContent(http.StatusNoContent)
		}
	}

	return fail(c, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "cart item not found")
}

func (s *Server) clearCart(c echo.Context) error {
	a := s.currentAccount(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	kept := s.store.cart[:0]
	for _, line := range s.store.cart {
		if line.UserID != a.ID {
			kept = append(kept, line)
		}
	}
	s.store.cart = kept

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) checkout(c echo.Context) error {
	a := s.currentAccount(c)

	var req struct {
		BookIDs      []int64   `json:"book_ids"`
		BorrowDate   time.Time `json:"borrow_date"`
		DurationDays int       `json:"duration_days"`
	}
	if err := c.Bind(&req); err != nil || len(req.BookIDs) == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "book_ids are required")
	}
	if req.DurationDays != 3 && req.DurationDays != 5 && req.DurationDays != 10 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "duration must be 3, 5 or 10 days")
	}
	if req.BorrowDate.IsZero() {
		req.BorrowDate = s.now()
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	// All-or-nothing: verify stock before creating any loan.
	for _, id := range req.BookIDs {
		book, found := s.store.books[id]
		if !found || book.StockAvailable <= 0 {
			return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "insufficient stock")
		}
	}

	loans := make([]entity.Loan, 0, len(req.BookIDs))
	for _, id := range req.BookIDs {
		loan, _ := s.store.borrow(a.ID, id, req.BorrowDate, req.DurationDays)
		loans = append(loans, loan)
	}

	// Checked-out books leave the cart.
	wanted := make(map[int64]struct{}, len(req.BookIDs))
	for _, id := range req.BookIDs {
		wanted[id] = struct{}{}
	}
	kept := s.store.cart[:0]
	for _, line := range s.store.cart {
		if _, borrowed := wanted[line.Book.ID]; line.UserID == a.ID && borrowed {
			continue
		}
		kept = append(kept, line)
	}
	s.store.cart = kept

	return ok(c, http.StatusCreated, map[string]any{"loans": loans}, "checked out")
}

// --- Loans ---

func (s *Server) borrow(c echo.Context) error {
	a := s.currentAccount(c)

	var req struct {
		BookID int64 `json:"book_id"`
	}
	if err := c.Bind(&req); err != nil || req.BookID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "book_id is required")
	}

	s.store.mu.Lock()
	loan, okBorrow := s.store.borrow(a.ID, req.BookID, s.now(), 5)
	s.store.mu.Unlock()
	if !okBorrow {
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "insufficient stock")
	}

	return ok(c, http.StatusCreated, map[string]any{"loan": loan}, "borrowed")
}

func (s *Server) myLoans(c echo.Context) error {
	a := s.currentAccount(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return ok(c, http.StatusOK, map[string]any{"loans": s.store.userLoans(a.ID)}, "")
}

func (s *Server) returnLoan(c echo.Context) error {
	a := s.currentAccount(c)
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid loan id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	owned := false
	for _, l := range s.store.loans {
		if l.ID == id && l.UserID == a.ID {
			owned = true

			break
		}
	}
	if !owned {
		return fail(c, http.StatusNotFound, "LOAN_NOT_FOUND", "loan not found")
	}

	loan, _, open := s.store.returnLoan(id)
	if !open {
		return fail(c, http.StatusConflict, "LOAN_ALREADY_RETURNED", "loan has already been returned")
	}

	return ok(c, http.StatusOK, map[string]any{"loan": loan}, "returned")
}

// --- Reviews ---

func (s *Server) upsertReview(c echo.Context) error {
	a := s.currentAccount(c)

	var req struct {
		ID      int64  `json:"id"`
		BookID  int64  `json:"book_id"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil || req.BookID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "book_id is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "rating must be between 1 and 5")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	book, found := s.store.books[req.BookID]
	if !found {
		return fail(c, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	}

	// One review per (user, book): a second write updates in place, whether
	// or not the client supplied the id.
	for _, r := range s.store.reviews {
		if r.UserID == a.ID && r.Book.ID == req.BookID {
			r.Rating = req.Rating
			r.Comment = req.Comment

			return ok(c, http.StatusOK, map[string]any{"review": r.Review}, "review updated")
		}
	}

	review := &reviewRecord{
		Review: entity.Review{
			ID:        s.store.id(),
			Book:      *book,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: s.now(),
		},
		UserID: a.ID,
	}
	s.store.reviews = append(s.store.reviews, review)

	return ok(c, http.StatusCreated, map[string]any{"review": review.Review}, "review created")
}

func (s *Server) deleteReview(c echo.Context) error {
	a := s.currentAccount(c)
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid review id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for i, r := range s.store.reviews {
		if r.ID == id && (r.UserID == a.ID || a.Admin) {
			s.store.reviews = append(s.store.reviews[:i], s.store.reviews[i+1:]...)

			return c.NoContent(http.StatusNoContent)
		}
	}

	return fail(c, http.StatusNotFound, "REVIEW_NOT_FOUND", "review not found")
}

func (s *Server) myReviews(c echo.Context) error {
	a := s.currentAccount(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	return ok(c, http.StatusOK, map[string]any{"reviews": s.store.userReviews(a.ID)}, "")
}

// --- Admin ---

func (s *Server) adminLoans(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]entity.Loan, 0, len(s.store.loans))
	for _, l := range s.store.loans {
		out = append(out, l.Loan)
	}

	return ok(c, http.StatusOK, map[string]any{"loans": out}, "")
}

func (s *Server) adminReturnLoan(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid loan id")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	loan, found, open := s.store.returnLoan(id)
	if !found {
		return fail(c, http.StatusNotFound, "LOAN_NOT_FOUND", "loan not found")
	}
	if !open {
		return fail(c, http.StatusConflict, "LOAN_ALREADY_RETURNED", "loan has already been returned")
	}

	return ok(c, http.StatusOK, map[string]any{"loan": loan}, "returned")
}

func (s *Server) overview(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	active, overdue := 0, 0
	now := s.now()
	for _, l := range s.store.loans {
		switch l.EffectiveStatus(now) {
		case entity.LoanOverdue:
			overdue++
		case entity.LoanActive:
			active++
		}
	}

	return ok(c, http.StatusOK, map[string]any{
		"total_books":   len(s.store.books),
		"total_users":   len(s.store.accounts),
		"active_loans":  active,
		"overdue_loans": overdue,
	}, "")
}

// --- helpers ---

func sortedBooks(books map[int64]*entity.Book) []entity.Book {
	out := make([]entity.Book, 0, len(books))
	for _, b := range books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// resolveAuthor finds an author by name, creating one when unknown. Caller
// holds the store lock.
func (s *store) resolveAuthor(name string) entity.AuthorRef {
	for _, a := range s.authors {
		if strings.EqualFold(a.Name, name) {
			return entity.AuthorRef{ID: a.ID, Name: a.Name}
		}
	}

	a := &entity.Author{ID: s.id(), Name: name}
	s.authors[a.ID] = a

	return entity.AuthorRef{ID: a.ID, Name: a.Name}
}

// applyBookRequest copies the optional fields. Caller holds the store lock.
func applyBookRequest(book *entity.Book, req *bookRequest, s *store) {
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.CategoryID != nil {
		if cat, found := s.categories[*req.CategoryID]; found {
			book.Category = entity.CategoryRef{ID: cat.ID, Name: cat.Name}
		}
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.StockAvailable != nil {
		book.StockAvailable = *req.StockAvailable
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.CoverImage != nil {
		book.CoverImage = *req.CoverImage
	}
}
