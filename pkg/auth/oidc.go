package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDC verifies ID tokens against a discovered provider such as a Keycloak realm.
type OIDC struct {
	verifier *oidc.IDTokenVerifier
	clientID string
}

type keycloakClaims struct {
	Username    string `json:"preferred_username"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// NewOIDC performs provider discovery at issuer. It contacts the issuer.
func NewOIDC(ctx context.Context, issuer, clientID string) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &OIDC{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		clientID: clientID,
	}, nil
}

func (o *OIDC) Verify(ctx context.Context, raw string) (*Principal, error) {
	token, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	var claims keycloakClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrUnauthorized, err)
	}

	return &Principal{
		Subject:  token.Subject,
		Username: claims.Username,
		Roles:    claims.roles(o.clientID),
	}, nil
}

// roles merges realm roles with the roles granted on clientID, without duplicates.
func (c keycloakClaims) roles(clientID string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(roles []string) {
		for _, r := range roles {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}

	add(c.RealmAccess.Roles)
	if client, ok := c.ResourceAccess[clientID]; ok {
		add(client.Roles)
	}
	return out
}
