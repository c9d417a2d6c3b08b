package sqlite

import (
	"context"

	"libris/internal/domain/entity"
	"libris/internal/domain/repository"
	"libris/internal/errors"

	"gorm.io/gorm"
)

const (
	tokenKey   = "token"
	profileKey = "user"
)

// sessionRepository persists the auth session under the same keys the
// storefront used in browser storage.
type sessionRepository struct {
	kv
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{kv{db: db}}
}

func (repo *sessionRepository) Save(ctx context.Context, session *entity.Session) error {
	if err := repo.putJSON(ctx, tokenKey, session.Token); err != nil {
		return err
	}

	if session.Profile == nil {
		return repo.delete(ctx, profileKey)
	}

	return repo.putJSON(ctx, profileKey, session.Profile)
}

func (repo *sessionRepository) Load(ctx context.Context) (*entity.Session, error) {
	var token string
	if err := repo.getJSON(ctx, tokenKey, &token); err != nil {
		return nil, err
	}

	session := &entity.Session{Token: token}

	var profile entity.Profile
	err := repo.getJSON(ctx, profileKey, &profile)
	switch {
	case err == nil:
		session.Profile = &profile
	case errors.Is(err, repository.ErrNotFound):
		// A token without a stored profile is still a session; the profile is
		// refetched on resume.
	default:
		return nil, err
	}

	return session, nil
}

func (repo *sessionRepository) Clear(ctx context.Context) error {
	return repo.delete(ctx, tokenKey, profileKey)
}
