package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the HS256 token payload. Roles mirror the realm roles of an OIDC token.
type Claims struct {
	Username string   `json:"preferred_username,omitempty"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// HMAC issues and verifies HS256 tokens with a shared secret.
type HMAC struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewHMAC creates an HS256 issuer and verifier.
func NewHMAC(secret, issuer string, ttl time.Duration) *HMAC {
	return &HMAC{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for subject carrying roles.
func (h *HMAC) Issue(subject, username string, roles ...string) (string, error) {
	now := h.now()
	claims := Claims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (h *HMAC) Verify(_ context.Context, raw string) (*Principal, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(t *jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return &Principal{
		Subject:  claims.Subject,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}
