package domain

import (
	"context"
	"time"
)

// KeyPrefix namespaces every key curalink writes to the KV store.
const KeyPrefix = "curalink:"

// Token is a bearer access token issued by the identity provider.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token is non-empty and not yet expired at now.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// TokenSource issues bearer tokens for archive requests.
type TokenSource interface {
	Token(ctx context.Context) (Token, error)
}
