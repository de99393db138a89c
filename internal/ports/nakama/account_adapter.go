package nakama

import (
	"context"

	"uno/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// UpdateProfile updates the account username, display name and avatar in
// Nakama. The avatar is a client avatar pool reference kept in the account
// metadata.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName, avatar string) error {
	var metadata map[string]interface{}
	if avatar != "" {
		metadata = map[string]interface{}{"avatar": avatar}
	}
	return a.nk.AccountUpdateId(ctx, userID, username, metadata, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
