package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/veranstalter/pkg/handlers"
)

// Authenticate returns middleware that verifies an Authorization bearer token
// when present and stores the principal on the request context.
// Requests without a token pass through anonymously; a rejected token gets 401.
func Authenticate(v Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			p, err := v.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("token rejected", "error", err)
				unauthorized(w, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// Require returns middleware admitting only principals with at least one of roles.
// Must run after Authenticate.
func Require(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := Authorize(r.Context(), roles...); err {
			case nil:
				next.ServeHTTP(w, r)
			case ErrUnauthorized:
				unauthorized(w, logger)
			default:
				handlers.RespondError(w, logger, http.StatusForbidden, err)
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="veranstalter"`)
	handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
