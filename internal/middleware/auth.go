package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hexagonhq/hexagon/internal/auth"
	"github.com/hexagonhq/hexagon/internal/ctxkeys"
	"github.com/hexagonhq/hexagon/internal/handler"
	"github.com/hexagonhq/hexagon/internal/service"
)

// AuthMiddleware verifies the bearer token and adds the resolved local user +
// token claims to the request context. Requests without a valid token continue
// unauthenticated; RequireAuth decides whether that matters.
func AuthMiddleware(verifier *auth.Verifier, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			subject, claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// Invalid token, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			user, err := userService.Resolve(r.Context(), subject)
			if err != nil {
				slog.Error("failed to resolve local user", "error", err, "subject", subject)
				handler.WriteError(w, http.StatusInternalServerError, "failed to resolve user")
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the request carries a verified identity
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			handler.WriteError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}

		next.ServeHTTP(w, r)
	}
}
