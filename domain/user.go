package domain

import (
	"context"
	"time"
)

// User is the voter as known to the identity provider.
// This subsystem never writes users.
type User struct {
	ID        int64     // Unique identifier
	CreatedAt time.Time // Account creation timestamp, source of the vote weight
}

// UserRepository defines the read-only contract for user lookup.
type UserRepository interface {
	// GetByID retrieves a user by their ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetByID(ctx context.Context, id int64) (User, error)
}
