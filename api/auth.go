/*
auth.go - Bearer-token authentication middleware

PURPOSE:
  Verifies HMAC-signed JWTs on incoming requests and injects the acting
  user into the request context. Handlers read the actor for audit fields
  (created_by / updated_by) via actorFrom.

TOKEN SHAPE:
  Standard registered claims; the subject ("sub") identifies the actor.
  Tokens are signed with HS256 using the configured shared secret.

DISABLED MODE:
  When auth is disabled (local development, tests), the middleware is not
  mounted and actorFrom falls back to the X-Actor header or "system".
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const actorKey contextKey = "actor"

// RequireAuth returns middleware that rejects requests without a valid
// bearer token signed with the given secret.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
				return
			}

			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid token", err)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// actorFrom extracts the acting user for audit fields. Precedence:
// verified token subject, X-Actor header, "system".
func actorFrom(r *http.Request) string {
	if actor, ok := r.Context().Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "system"
}
