// Package middleware provides HTTP middleware for authentication and authorization.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// actorKey is the context key for storing the authenticated actor.
const actorKey ContextKey = "actor"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (SubjectGetter, error)
}

// SubjectGetter exposes the identity a verified token was issued for.
type SubjectGetter interface {
	GetActorID() string
	GetRole() types.Role
}

// ActorLoader loads the current account behind a token. store.Store satisfies it.
type ActorLoader interface {
	GetActor(ctx context.Context, id string) (*types.Actor, error)
}

// AuthMiddleware validates the bearer token, loads the actor it names and
// adds it to the request context. The account is re-read on every request so
// a rejected account loses access without waiting for its token to expire.
// A token whose role no longer matches the account is refused.
func AuthMiddleware(tokens TokenValidator, actors ActorLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				deny(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			actor, err := actors.GetActor(r.Context(), claims.GetActorID())
			switch {
			case errors.Is(err, store.ErrMalformedID):
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			case err != nil:
				deny(w, http.StatusInternalServerError, "storage unavailable")
				return
			case actor == nil, actor.Role != claims.GetRole():
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			case !actor.IsActive():
				deny(w, http.StatusForbidden, "Account is not active")
				return
			}

			next.ServeHTTP(w, WithActor(r, actor))
		})
	}
}

// bearerToken extracts the token from an Authorization header.
// The "Bearer" prefix is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], parts[1] != ""
}

func deny(w http.ResponseWriter, status int, message string) {
	kind := "authorization"
	if status == http.StatusInternalServerError {
		kind = "infrastructure"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "kind": kind})
}

// WithActor returns a copy of r carrying actor.
func WithActor(r *http.Request, actor *types.Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), actorKey, actor))
}

// GetActor extracts the authenticated actor from the request context.
func GetActor(r *http.Request) (*types.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(*types.Actor)
	return actor, ok && actor != nil
}
