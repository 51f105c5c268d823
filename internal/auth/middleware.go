package auth

import (
	"context"
	"net/http"

	"github.com/sdas-dev/accountly/internal/httputil"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller resolved from the session cookie.
type Identity struct {
	UserID   string
	Email    string
	UserName string
}

// TokenVerifier is what the middleware needs from the issuer.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Middleware reads the session cookie, verifies the token, and attaches the
// caller Identity to the request context.
func Middleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(CookieName)
			if err != nil {
				httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
					Success: false,
					Message: "Unauthorized",
				})
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				httputil.JSONResponse(w, http.StatusUnauthorized, httputil.Payload{
					Success: false,
					Message: "Unauthorized",
				})
				return
			}

			identity := Identity{
				UserID:   claims.UserID,
				Email:    claims.Email,
				UserName: claims.UserName,
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the caller attached by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity is used by tests to fabricate an authenticated request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
