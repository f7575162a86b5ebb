package auth

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Session is the server-side state behind one opaque session token.
type Session struct {
	UserID     uuid.UUID
	IsLoggedIn bool
}

// SessionStore keeps sessions in memory with a TTL. Tokens are opaque UUIDs;
// nothing about the user is encoded in the cookie itself.
type SessionStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// TTL returns the configured session lifetime, used for cookie expiry.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create registers a logged-in session for userID and returns its token.
func (s *SessionStore) Create(userID uuid.UUID) string {
	token := uuid.NewString()
	s.cache.Set(token, Session{UserID: userID, IsLoggedIn: true}, gocache.DefaultExpiration)
	return token
}

// Get resolves a token. The second return is false for unknown or expired
// tokens.
func (s *SessionStore) Get(token string) (Session, bool) {
	v, ok := s.cache.Get(token)
	if !ok {
		return Session{}, false
	}
	sess, ok := v.(Session)
	return sess, ok
}

// Destroy removes the session behind token, if any.
func (s *SessionStore) Destroy(token string) {
	s.cache.Delete(token)
}
