package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/teamzen/hris-backend-go/internal/domain/auth"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
)

type claimsKey struct{}

// AuthRequired runs after jwtauth.Verifier. It rejects missing, non-access and revoked tokens
// and puts the parsed claims on the request context.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "missing bearer token")
				return
			}

			claims, err := jwtService.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if claims.Type != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidTokenType)
				return
			}
			if claims.TokenID != "" && jwtService.IsTokenRevoked(claims.TokenID) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithClaims(ctx context.Context, claims jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims AuthRequired stored on ctx.
func ClaimsFrom(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.Claims)
	return claims, ok
}
