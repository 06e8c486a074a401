package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"agrocert/internal/access"
	dErrors "agrocert/pkg/domain-errors"
	"agrocert/pkg/platform/httputil"
	"agrocert/pkg/requestcontext"
)

// IdentityValidator turns a bearer token into the request identity.
type IdentityValidator interface {
	ValidateIdentity(tokenString string) (*access.Identity, error)
}

// RequireAuth verifies the bearer token and attaches the identity to the
// request context. Authorization decisions downstream read only that identity.
func RequireAuth(validator IdentityValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			ident, err := validator.ValidateIdentity(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = access.WithIdentity(ctx, ident)
			ctx = requestcontext.WithUserID(ctx, ident.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
