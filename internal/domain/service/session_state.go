// Package service defines domain service interfaces implemented by the
// infrastructure layer.
package service

import "libris/internal/domain/entity"

// SessionState exposes the current auth session to collaborators that must not
// own it. It is injected explicitly (into the gateway, the usecases) instead of
// being reached through ambient global state.
type SessionState interface {
	// Token returns the current bearer token, or "" when unauthenticated.
	Token() string

	// Namespace returns the fallback-store namespace for the current identity,
	// entity.GuestNamespace when unauthenticated.
	Namespace() string

	// Profile returns the current profile, or nil when unauthenticated.
	Profile() *entity.Profile
}
