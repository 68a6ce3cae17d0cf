package auth

import "time"

// MergeRoles exposes Keycloak role extraction to external tests.
func MergeRoles(realm []string, resource map[string][]string, clientID string) []string {
	var c keycloakClaims
	c.RealmAccess.Roles = realm
	c.ResourceAccess = make(map[string]struct {
		Roles []string `json:"roles"`
	})
	for k, v := range resource {
		c.ResourceAccess[k] = struct {
			Roles []string `json:"roles"`
		}{Roles: v}
	}
	return c.roles(clientID)
}

// SetNow overrides the clock used to issue and verify tokens.
func (h *HMAC) SetNow(now func() time.Time) {
	h.now = now
}
