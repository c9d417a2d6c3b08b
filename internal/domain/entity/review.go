package entity

import "time"

// Review is a user's rating of a book. The backend enforces at most one review
// per (user, book) pair through upsert semantics: writes that carry the ID of
// an existing review update it instead of creating a duplicate.
type Review struct {
	ID        int64     `json:"id"`
	Book      Book      `json:"book"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
