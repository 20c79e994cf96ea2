// Package session provides server-side HTTP sessions for the admin area.
// A random session ID travels in an HMAC-signed cookie; the payload is
// stored as JSON by a Backend (PostgreSQL or Valkey) with a fixed expiry.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "noticias_sid"

	// DefaultTTL is how long a session lives before it expires.
	DefaultTTL = 24 * time.Hour

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// ErrNoSession is returned by Backend.Load when the ID is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Data holds the session payload.
type Data struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Backend persists session payloads by ID.
type Backend interface {
	Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	Load(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Pruner is implemented by backends that need expired sessions removed
// explicitly. Valkey expires keys on its own; PostgreSQL does not.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Store manages the session lifecycle on top of a Backend.
type Store struct {
	backend Backend
	secret  []byte
	ttl     time.Duration
	secure  bool
}

// NewStore creates a session store. secret signs the cookie; secure sets
// the cookie's Secure flag and should be true behind TLS.
func NewStore(backend Backend, secret string, secure bool) *Store {
	return &Store{
		backend: backend,
		secret:  []byte(secret),
		ttl:     DefaultTTL,
		secure:  secure,
	}
}

// Create generates a new session, persists it and sets the session cookie
// on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.backend.Save(ctx, id, payload, s.ttl); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.sign(id),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return id, nil
}

// Get returns the session for the request's cookie. A missing cookie, a
// bad signature or an expired session all yield nil with no error.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id, ok := s.idFromRequest(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.backend.Load(ctx, id)
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Destroy removes the session server-side and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	// Expire the cookie whatever happens below.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	id, ok := s.idFromRequest(r)
	if !ok {
		return nil
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// StartPruner deletes expired sessions every interval until ctx is done.
// It does nothing for backends that expire entries themselves.
func (s *Store) StartPruner(ctx context.Context, interval time.Duration) {
	p, ok := s.backend.(Pruner)
	if !ok {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := p.Prune(ctx)
				if err != nil {
					slog.Warn("session prune failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Debug("expired sessions pruned", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Store) idFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return s.verify(cookie.Value)
}

// sign returns "<id>.<base64url(hmac-sha256(id))>".
func (s *Store) sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(s.mac(id))
}

// verify checks a signed cookie value and returns the session ID.
func (s *Store) verify(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(got, s.mac(id)) {
		return "", false
	}
	return id, true
}

func (s *Store) mac(id string) []byte {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(id))
	return m.Sum(nil)
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
