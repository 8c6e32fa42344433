package ports

import (
	"context"
	"time"
)

// TokenClaims is what a verified token tells us about its bearer.
type TokenClaims struct {
	Subject   string // user id
	TokenID   string
	ExpiresAt time.Time
}

// TokenService issues and verifies signed, time-bound identity tokens.
type TokenService interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*TokenClaims, error)
}

// PasswordHasher hashes passwords and checks them against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenRevoker remembers revoked token ids until the token would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
