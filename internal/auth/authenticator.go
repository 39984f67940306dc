package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrTokenRevoked = errors.New("token revoked")

// Authenticator verifies bearer tokens and rejects logged-out ones.
type Authenticator struct {
	tokens      *TokenManager
	revocations RevocationStore
}

// NewAuthenticator builds an Authenticator. A nil store disables revocation checks.
func NewAuthenticator(tokens *TokenManager, revocations RevocationStore) *Authenticator {
	if revocations == nil {
		revocations = NoopRevocationStore{}
	}
	return &Authenticator{tokens: tokens, revocations: revocations}
}

// Authenticate verifies a raw token.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (Claims, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	revoked, err := a.revocations.IsRevoked(ctx, token)
	if err != nil {
		return Claims{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Claims{}, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke invalidates token until its expiry.
func (a *Authenticator) Revoke(ctx context.Context, token string, claims Claims) error {
	return a.revocations.Revoke(ctx, token, claims.ExpiresAt)
}

// Tokens exposes the underlying token manager for issuing.
func (a *Authenticator) Tokens() *TokenManager {
	return a.tokens
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
