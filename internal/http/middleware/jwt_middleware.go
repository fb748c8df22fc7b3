package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/diagnosis/teamtodo/internal/http/response"
	"github.com/diagnosis/teamtodo/internal/platform/auth"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireJWT rejects requests without a valid bearer token and stores
// the parsed claims in the request context.
func RequireJWT(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.WriteProblem(w, http.StatusUnauthorized, response.TitleUnauthorized, "Missing or invalid authorization header")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")
			claims, err := issuer.Parse(raw)
			if err != nil {
				response.WriteProblem(w, http.StatusUnauthorized, response.TitleUnauthorized, "Invalid authorization token")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
