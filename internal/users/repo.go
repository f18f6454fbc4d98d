package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DefaultListLimit caps the users listing.
const DefaultListLimit = 20

// Repo persists users.
type Repo interface {
	// UpsertByEmail creates the user or refreshes profile fields of the user with
	// the same email, returning the stored row.
	UpsertByEmail(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetManyByID(ctx context.Context, userIDs []string) (map[string]User, error)
	List(ctx context.Context, limit int) ([]User, error)
}
