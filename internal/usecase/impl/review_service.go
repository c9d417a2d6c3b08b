package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/domain/service"
	"libris/internal/infra/gateway"
	"libris/internal/infra/querycache"
	"libris/internal/usecase"

	"github.com/pkg/errors"
)

// reviewService implements the ReviewUsecase interface.
type reviewService struct {
	gw         *gateway.Gateway
	cache      *querycache.Cache
	reviewRepo repository.ReviewRepository
	session    service.SessionState
	logger     *slog.Logger
}

// NewReviewService is the constructor for reviewService.
func NewReviewService(
	gw *gateway.Gateway,
	cache *querycache.Cache,
	reviewRepo repository.ReviewRepository,
	session service.SessionState,
	logger *slog.Logger,
) usecase.ReviewUsecase {
	return &reviewService{
		gw:         gw,
		cache:      cache,
		reviewRepo: reviewRepo,
		session:    session,
		logger:     logger,
	}
}

func (srv *reviewService) BookReviews(ctx context.Context, bookID int64) ([]entity.Review, error) {
	return querycache.Fetch(ctx, srv.cache, bookReviewsKey(bookID), func(ctx context.Context) ([]entity.Review, error) {
		raw, err := srv.gw.Get(ctx, fmt.Sprintf("/reviews/book/%d", bookID))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch reviews for book %d", bookID)
		}

		return gateway.DecodeField[[]entity.Review](raw, "reviews")
	})
}

// MyReviews merges the server list with the local mirror, so the
// "already reviewed" state is available even when the backend has no read
// endpoint for it.
func (srv *reviewService) MyReviews(ctx context.Context) ([]entity.Review, error) {
	ns := srv.session.Namespace()

	return querycache.Fetch(ctx, srv.cache, myReviewsKey(ns), func(ctx context.Context) ([]entity.Review, error) {
		var server []entity.Review
		raw, err := srv.gw.Get(ctx, "/me/reviews")
		if err != nil {
			srv.logger.Warn("review list degraded to local mirror", "error", err)
		} else if server, err = gateway.DecodeField[[]entity.Review](raw, "reviews"); err != nil {
			return nil, err
		}

		local, err := srv.reviewRepo.Load(ctx, ns)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load mirrored reviews")
		}

		return mergeByID(server, local, func(r entity.Review) int64 { return r.ID }), nil
	})
}

// Upsert creates or updates the user's review of a book. A known review for
// the same book contributes its ID so the backend updates in place; the local
// mirror is updated before the request and restored on failure.
func (srv *reviewService) Upsert(ctx context.Context, input *usecase.UpsertReviewInput) (*entity.Review, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	ns := srv.session.Namespace()

	mine, err := srv.MyReviews(ctx)
	if err != nil {
		return nil, err
	}

	var existingID int64
	for _, r := range mine {
		if r.Book.ID == input.BookID {
			existingID = r.ID

			break
		}
	}

	prevMirror, err := srv.reviewRepo.Load(ctx, ns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load mirrored reviews")
	}

	draft := entity.Review{
		ID:      existingID,
		Book:    entity.Book{ID: input.BookID},
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	if err := srv.reviewRepo.Save(ctx, ns, upsertLocal(prevMirror, draft)); err != nil {
		return nil, errors.Wrap(err, "failed to mirror review")
	}

	payload := map[string]any{
		"book_id": input.BookID,
		"rating":  input.Rating,
		"comment": input.Comment,
	}
	if existingID != 0 {
		payload["id"] = existingID
	}

	raw, err := srv.gw.Do(ctx, http.MethodPost, "/reviews", payload)
	if err != nil {
		// Put the pre-write mirror back so a retry starts from known state.
		if restoreErr := srv.reviewRepo.Save(ctx, ns, prevMirror); restoreErr != nil {
			srv.logger.Warn("failed to restore review mirror", "error", restoreErr)
		}

		return nil, errors.Wrapf(err, "failed to submit review for book %d", input.BookID)
	}

	saved, err := gateway.DecodeField[entity.Review](raw, "review")
	if err != nil || saved.ID == 0 {
		saved = draft
	}

	if err := srv.reviewRepo.Save(ctx, ns, upsertLocal(prevMirror, saved)); err != nil {
		srv.logger.Warn("failed to mirror saved review", "error", err)
	}

	srv.cache.Invalidate(myReviewsKey(ns), bookReviewsKey(input.BookID))

	return &saved, nil
}

func (srv *reviewService) Delete(ctx context.Context, reviewID int64) error {
	ns := srv.session.Namespace()

	mine, err := srv.MyReviews(ctx)
	if err != nil {
		return err
	}

	var target *entity.Review
	for i := range mine {
		if mine[i].ID == reviewID {
			target = &mine[i]

			break
		}
	}
	if target == nil {
		return domainerrors.ErrReviewNotFound
	}

	if _, err := srv.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/reviews/%d", reviewID), nil); err != nil {
		return errors.Wrapf(err, "failed to delete review %d", reviewID)
	}

	mirror, err := srv.reviewRepo.Load(ctx, ns)
	if err == nil {
		kept := make([]entity.Review, 0, len(mirror))
		for _, r := range mirror {
			if r.ID != reviewID {
				kept = append(kept, r)
			}
		}
		if err := srv.reviewRepo.Save(ctx, ns, kept); err != nil {
			srv.logger.Warn("failed to mirror review deletion", "error", err)
		}
	}

	srv.cache.Invalidate(myReviewsKey(ns), bookReviewsKey(target.Book.ID))

	return nil
}

// upsertLocal replaces the review for the same book, or appends.
func upsertLocal(reviews []entity.Review, review entity.Review) []entity.Review {
	next := make([]entity.Review, 0, len(reviews)+1)
	replaced := false
	for _, r := range reviews {
		if r.Book.ID == review.Book.ID {
			next = append(next, review)
			replaced = true

			continue
		}
		next = append(next, r)
	}
	if !replaced {
		next = append(next, review)
	}

	return next
}
