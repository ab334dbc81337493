// Package token issues and verifies the bearer tokens that authenticate API
// requests. Tokens are HS256-signed JWTs carrying the user id as subject and
// a random id (jti) so a single token can be revoked on logout.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Type is the token_type reported to clients.
	Type = "bearer"

	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = 60 * time.Minute
)

var (
	// ErrExpired means the token's exp claim has passed.
	ErrExpired = errors.New("token expired")

	// ErrMalformed means the token could not be parsed at all.
	ErrMalformed = errors.New("token malformed")

	// ErrInvalid covers bad signatures, wrong algorithms, and missing claims.
	ErrInvalid = errors.New("token invalid")

	// ErrRevoked means the token was explicitly logged out.
	ErrRevoked = errors.New("token revoked")
)

// Claims are the JWT claims written into every token.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Denylist records revoked token ids until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Manager signs and verifies tokens.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
	now      func() time.Time
}

// NewManager creates a Manager. A zero ttl selects DefaultTTL.
func NewManager(secret string, ttl time.Duration, denylist Denylist) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: denylist,
		now:      time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for the given user.
func (m *Manager) Issue(userID uuid.UUID) (string, error) {
	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry, and revocation status of raw and
// returns its claims.
func (m *Manager) Verify(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	if _, err := claims.UserID(); err != nil || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalid)
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Revoke denies the token described by claims for the rest of its lifetime.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.denylist == nil {
		return nil
	}
	until := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := m.denylist.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
