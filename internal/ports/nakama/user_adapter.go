package nakama

import (
	"context"
	"fmt"

	"darts/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// userGetter is the slice of runtime.NakamaModule the user adapter needs.
type userGetter interface {
	UsersGetId(ctx context.Context, userIDs []string, facebookIDs []string) ([]*api.User, error)
}

// NakamaUserAdapter implements ports.UserDirectory over Nakama accounts.
type NakamaUserAdapter struct {
	nk userGetter
}

// NewNakamaUserAdapter creates a new user adapter.
func NewNakamaUserAdapter(nk userGetter) *NakamaUserAdapter {
	return &NakamaUserAdapter{nk: nk}
}

// LookupUser resolves userID to an account, returning ports.ErrUserNotFound
// when Nakama has no such user.
func (a *NakamaUserAdapter) LookupUser(ctx context.Context, userID string) (ports.User, error) {
	if userID == "" {
		return ports.User{}, ports.ErrUserNotFound
	}
	users, err := a.nk.UsersGetId(ctx, []string{userID}, nil)
	if err != nil {
		return ports.User{}, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	for _, u := range users {
		if u.GetId() == userID {
			return ports.User{
				ID:          u.GetId(),
				Username:    u.GetUsername(),
				DisplayName: u.GetDisplayName(),
			}, nil
		}
	}
	return ports.User{}, ports.ErrUserNotFound
}

var _ ports.UserDirectory = (*NakamaUserAdapter)(nil)
