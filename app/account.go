package app

import "context"

// Profile describes a public account.
type Profile struct {
	DID         string
	Handle      string
	DisplayName string
	Bio         string
	Posts       int
	Followers   int
	Follows     int
}

// AccountService resolves and describes public accounts.
type AccountService interface {
	// ResolveIdentity maps a handle to its DID. Inputs that are already
	// DIDs pass through unchanged without a network call.
	ResolveIdentity(ctx context.Context, actor string) (string, error)

	// Profile returns the public profile for a handle or DID.
	Profile(ctx context.Context, actor string) (Profile, error)
}
