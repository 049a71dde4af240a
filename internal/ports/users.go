package ports

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by a UserDirectory when no account matches the id.
var ErrUserNotFound = errors.New("user not found")

// User is the minimal account record the match service needs.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

// UserDirectory resolves player identifiers to accounts.
type UserDirectory interface {
	// LookupUser returns the account for userID or ErrUserNotFound.
	LookupUser(ctx context.Context, userID string) (User, error)
}
