// Package mockapi is a self-contained library backend used for local
// development and integration tests. It reproduces the production API's
// surface, including its inconsistent response envelopes and profile field
// names, so the client's normalization paths get exercised for real.
package mockapi

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"libris/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	slogecho "github.com/samber/slog-echo"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Server is the mock backend.
type Server struct {
	cfg    *config.MockAPIConfig
	logger *slog.Logger
	echo   *echo.Echo
	store  *store
	secret []byte
	now    func() time.Time
}

// NewServer builds the server and registers its routes.
func NewServer(params Params) (*Server, error) {
	if params.Config.MockAPI == nil {
		return nil, errors.New("mockapi configuration is missing")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(params.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		cfg:    params.Config.MockAPI,
		logger: params.Logger,
		echo:   e,
		store:  newStore(),
		secret: []byte(params.Config.MockAPI.JWTSecret),
		now:    time.Now,
	}
	s.registerRoutes()

	params.Append(fx.Hook{
		OnStop: s.stop,
	})

	return s, nil
}

// Handler exposes the underlying echo handler, used by httptest in
// integration tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

// Serve blocks serving HTTP until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.Port))
	s.logger.Info("Starting mock API server", slog.String("hostPort", hostPort))
	if err := s.echo.Start(hostPort); err != nil {
		return errors.Wrap(err, "failed to serve mock api")
	}

	return nil
}

func (s *Server) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.logger.Info("Shutting down mock API server")

	return errors.WithStack(s.echo.Shutdown(shutdownCtx))
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/health", func(c echo.Context) error {
		return ok(c, 200, map[string]string{"status": "ok"}, "")
	})

	auth := e.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/logout", s.logout, s.authenticate)
		auth.POST("/forgot-password", s.forgotPassword)
		auth.GET("/me", s.legacyProfile, s.authenticate)
	}

	e.GET("/me", s.profile, s.authenticate)
	e.PUT("/me", s.updateProfile, s.authenticate)
	e.GET("/me/reviews", s.myReviews, s.authenticate)

	e.GET("/books", s.listBooks)
	e.GET("/books/search", s.searchBooks)
	e.GET("/books/recommend", s.recommendBooks)
	e.GET("/books/:id", s.getBook)
	e.GET("/books/:id/reviews", s.bookReviews)
	e.POST("/books", s.addBook, s.authenticate, s.requireAdmin)
	e.PUT("/books/:id", s.updateBook, s.authenticate, s.requireAdmin)
	e.DELETE("/books/:id", s.deleteBook, s.authenticate, s.requireAdmin)

	e.GET("/categories", s.listCategories)
	e.GET("/categories/:id", s.getCategory)
	e.POST("/categories", s.addCategory, s.authenticate, s.requireAdmin)
	e.PUT("/categories/:id", s.updateCategory, s.authenticate, s.requireAdmin)
	e.DELETE("/categories/:id", s.deleteCategory, s.authenticate, s.requireAdmin)

	e.GET("/authors", s.listAuthors)
	e.GET("/authors/:id", s.getAuthor)
	e.GET("/authors/:id/books", s.authorBooks)
	e.POST("/authors", s.addAuthor, s.authenticate, s.requireAdmin)
	e.PUT("/authors/:id", s.updateAuthor, s.authenticate, s.requireAdmin)
	e.DELETE("/authors/:id", s.deleteAuthor, s.authenticate, s.requireAdmin)

	cart := e.Group("/cart", s.authenticate)
	{
		cart.GET("", s.getCart)
		cart.DELETE("", s.clearCart)
		cart.POST("/items", s.addCartItem)
		cart.PATCH("/items/:id", s.updateCartItem)
		cart.DELETE("/items/:id", s.removeCartItem)
		cart.POST("/checkout", s.checkout)
	}

	loans := e.Group("/loans", s.authenticate)
	{
		loans.POST("", s.borrow)
		loans.GET("/my", s.myLoans)
		loans.PATCH("/:id/return", s.returnLoan)
	}

	e.GET("/reviews/book/:id", s.bookReviews)
	e.POST("/reviews", s.upsertReview, s.authenticate)
	e.DELETE("/reviews/:id", s.deleteReview, s.authenticate)

	admin := e.Group("/admin", s.authenticate, s.requireAdmin)
	{
		admin.GET("/loans", s.adminLoans)
		admin.PATCH("/loans/:id/return", s.adminReturnLoan)
		admin.GET("/overview", s.overview)
	}
}
