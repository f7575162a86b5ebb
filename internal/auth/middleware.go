package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "sid"

// Identity is the resolved caller, passed explicitly through the request
// context rather than via any ambient state.
type Identity struct {
	UserID uuid.UUID
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the caller set by RequireSession.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RequireSession rejects requests whose session cookie does not resolve to a
// logged-in user, and injects the identity into the request context.
func RequireSession(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				unauthorized(w)
				return
			}

			sess, ok := sessions.Get(cookie.Value)
			if !ok || !sess.IsLoggedIn || sess.UserID == uuid.Nil {
				unauthorized(w)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: sess.UserID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "You are not logged in."})
}
