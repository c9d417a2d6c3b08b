package usecase

import (
	"context"

	"libris/internal/domain/entity"
)

// SessionUsecase defines the auth session lifecycle: login creates, Resume
// revalidates a persisted token on start, Logout destroys. A token that fails
// revalidation tears the session down silently instead of leaving the client
// authenticated-but-invalid.
type SessionUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*entity.Profile, error)
	Register(ctx context.Context, input *RegisterInput) (*entity.Profile, error)

	// Resume restores a persisted session. It returns (nil, nil) when no
	// session exists or the stored token is no longer valid.
	Resume(ctx context.Context) (*entity.Profile, error)

	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error

	// Current returns the in-memory profile, nil when unauthenticated.
	Current() *entity.Profile

	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.Profile, error)
}

// --- Input DTOs ---

// LoginInput defines the credentials for login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput defines the data required to create an account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfileInput defines the data for a profile update. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}
