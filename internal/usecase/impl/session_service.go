package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/infra/auth"
	"libris/internal/infra/gateway"
	"libris/internal/infra/querycache"
	"libris/internal/usecase"

	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	gw          *gateway.Gateway
	cache       *querycache.Cache
	store       *auth.SessionStore
	sessionRepo repository.SessionRepository
	cartRepo    repository.CartRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	gw *gateway.Gateway,
	cache *querycache.Cache,
	store *auth.SessionStore,
	sessionRepo repository.SessionRepository,
	cartRepo repository.CartRepository,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		gw:          gw,
		cache:       cache,
		store:       store,
		sessionRepo: sessionRepo,
		cartRepo:    cartRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*entity.Profile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	raw, err := srv.gw.DoWithToken(ctx, http.MethodPost, "/auth/login", input, "")
	if err != nil {
		var httpErr *gateway.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusUnauthorized {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, errors.Wrap(err, "login failed")
	}

	token, err := decodeToken(raw)
	if err != nil {
		return nil, err
	}

	return srv.establish(ctx, token)
}

func (srv *sessionService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.Profile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	raw, err := srv.gw.DoWithToken(ctx, http.MethodPost, "/auth/register", input, "")
	if err != nil {
		return nil, errors.Wrap(err, "registration failed")
	}

	token, err := decodeToken(raw)
	if err != nil {
		return nil, err
	}

	return srv.establish(ctx, token)
}

// Resume restores the persisted session. A missing session, a locally expired
// token, or a token the backend no longer accepts all resolve to (nil, nil)
// after tearing the stored session down; resume never fails loudly.
func (srv *sessionService) Resume(ctx context.Context) (*entity.Profile, error) {
	session, err := srv.sessionRepo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to load persisted session")
	}
	if session == nil || session.Token == "" {
		return nil, nil
	}

	if auth.TokenExpired(session.Token, srv.now()) {
		srv.logger.Info("stored token expired, discarding session")
		srv.teardown(ctx)

		return nil, nil
	}

	profile, err := srv.fetchProfile(ctx, session.Token)
	if err != nil {
		srv.logger.Info("stored token rejected, discarding session", "error", err)
		srv.teardown(ctx)

		return nil, nil
	}

	srv.store.Set(session.Token, profile)
	if err := srv.sessionRepo.Save(ctx, &entity.Session{Token: session.Token, Profile: profile}); err != nil {
		srv.logger.Warn("failed to refresh persisted session", "error", err)
	}

	return profile, nil
}

func (srv *sessionService) Logout(ctx context.Context) error {
	ns := srv.store.Namespace()

	if _, err := srv.gw.Do(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		// Server-side logout is best effort; the local session dies regardless.
		srv.logger.Warn("server logout failed", "error", err)
	}

	srv.teardown(ctx)
	if err := srv.cartRepo.Clear(ctx, ns); err != nil {
		srv.logger.Warn("failed to clear mirrored cart on logout", "error", err)
	}
	srv.cache.Invalidate(cartKey(ns), myLoansKey(ns), myReviewsKey(ns))

	return nil
}

func (srv *sessionService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}

	if _, err := srv.gw.DoWithToken(ctx, http.MethodPost, "/auth/forgot-password", map[string]any{"email": email}, ""); err != nil {
		return errors.Wrap(err, "failed to request password reset")
	}

	return nil
}

func (srv *sessionService) Current() *entity.Profile {
	return srv.store.Profile()
}

func (srv *sessionService) UpdateProfile(ctx context.Context, input *usecase.UpdateProfileInput) (*entity.Profile, error) {
	if srv.store.Token() == "" {
		return nil, domainerrors.ErrNotAuthenticated
	}

	raw, err := srv.gw.Do(ctx, http.MethodPut, "/me", input)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}

	profile := gateway.NormalizeProfile(raw)
	if profile.ID == "" {
		// Some backends acknowledge without echoing; refetch the profile.
		fetched, err := srv.fetchProfile(ctx, srv.store.Token())
		if err != nil {
			return nil, errors.Wrap(err, "failed to reload profile")
		}
		profile = *fetched
	}

	srv.store.Set(srv.store.Token(), &profile)
	if err := srv.sessionRepo.Save(ctx, &entity.Session{Token: srv.store.Token(), Profile: &profile}); err != nil {
		srv.logger.Warn("failed to persist updated profile", "error", err)
	}

	return &profile, nil
}

// establish fetches and normalizes the profile for a fresh token, then
// installs the session in memory and on disk.
func (srv *sessionService) establish(ctx context.Context, token string) (*entity.Profile, error) {
	profile, err := srv.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	srv.store.Set(token, profile)
	if err := srv.sessionRepo.Save(ctx, &entity.Session{Token: token, Profile: profile}); err != nil {
		srv.logger.Warn("failed to persist session", "error", err)
	}

	srv.logger.Info("session established", "userId", profile.ID)

	return profile, nil
}

// fetchProfile reads the profile with an explicit token, trying the primary
// endpoint first and its legacy alias second, and normalizes whichever shape
// comes back.
func (srv *sessionService) fetchProfile(ctx context.Context, token string) (*entity.Profile, error) {
	raw, err := srv.gw.DoWithToken(ctx, http.MethodGet, "/me", nil, token)
	if err != nil {
		raw, err = srv.gw.DoWithToken(ctx, http.MethodGet, "/auth/me", nil, token)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch profile")
		}
	}

	profile := gateway.NormalizeProfile(raw)
	if profile.ID == "" {
		return nil, errors.New("profile response carried no identity")
	}

	return &profile, nil
}

// teardown clears both the in-memory and the persisted session.
func (srv *sessionService) teardown(ctx context.Context) {
	srv.store.Reset()
	if err := srv.sessionRepo.Clear(ctx); err != nil {
		srv.logger.Warn("failed to clear persisted session", "error", err)
	}
}

// decodeToken extracts the bearer token from an auth response, tolerating both
// {token} and {access_token} under an optional envelope.
func decodeToken(raw json.RawMessage) (string, error) {
	payload, err := gateway.Decode[struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}](raw)
	if err != nil {
		return "", err
	}

	token := payload.Token
	if token == "" {
		token = payload.AccessToken
	}
	if token == "" {
		return "", errors.New("auth response carried no token")
	}

	return token, nil
}
