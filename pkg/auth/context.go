package auth

import (
	"context"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyUserID is the context key for the authenticated user ID
	ContextKeyUserID contextKey = "user_id"
	// ContextKeyWalletAddress is the context key for the user's custodial wallet address
	ContextKeyWalletAddress contextKey = "wallet_address"
	// ContextKeyTwitterUsername is the context key for the user's linked Twitter handle
	ContextKeyTwitterUsername contextKey = "twitter_username"
	// ContextKeyEmailVerified is the context key for the user's email verification state
	ContextKeyEmailVerified contextKey = "email_verified"
)

// WithUserID adds the user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// UserIDFromContext retrieves the user ID from the context
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok
}

// WithWalletAddress adds the wallet address to the context
func WithWalletAddress(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, ContextKeyWalletAddress, address)
}

// WalletAddressFromContext retrieves the wallet address from the context
func WalletAddressFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(ContextKeyWalletAddress).(string)
	return addr, ok
}

// WithTwitterUsername adds the Twitter handle to the context
func WithTwitterUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ContextKeyTwitterUsername, username)
}

// TwitterUsernameFromContext retrieves the Twitter handle from the context
func TwitterUsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ContextKeyTwitterUsername).(string)
	return name, ok
}

// WithEmailVerified adds the email verification state to the context
func WithEmailVerified(ctx context.Context, verified bool) context.Context {
	return context.WithValue(ctx, ContextKeyEmailVerified, verified)
}

// EmailVerifiedFromContext retrieves the email verification state from the context
func EmailVerifiedFromContext(ctx context.Context) (bool, bool) {
	verified, ok := ctx.Value(ContextKeyEmailVerified).(bool)
	return verified, ok
}

// Identity contains all authentication information for a request
type Identity struct {
	UserID          string
	WalletAddress   string
	TwitterUsername string
	EmailVerified   bool
}

// WithIdentity adds all authentication info to the context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = WithUserID(ctx, id.UserID)
	ctx = WithWalletAddress(ctx, id.WalletAddress)
	ctx = WithTwitterUsername(ctx, id.TwitterUsername)
	ctx = WithEmailVerified(ctx, id.EmailVerified)
	return ctx
}

// IdentityFromContext retrieves all authentication info from the context
func IdentityFromContext(ctx context.Context) *Identity {
	id := &Identity{}
	id.UserID, _ = UserIDFromContext(ctx)
	id.WalletAddress, _ = WalletAddressFromContext(ctx)
	id.TwitterUsername, _ = TwitterUsernameFromContext(ctx)
	id.EmailVerified, _ = EmailVerifiedFromContext(ctx)
	return id
}
