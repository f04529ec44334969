// Package memory implementa core.Repository en memoria.
// Se usa con storage.driver=memory (dev) y en los tests unitarios.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/reddgate/internal/store/core"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]*core.User // por username
	byID    map[uuid.UUID]string
	byEmail map[string]string // email -> username, espeja el UNIQUE de pg
	verify  map[string]*core.VerificationToken
	refresh *gocache.Cache // token_hash -> core.RefreshToken
}

// New crea el store. refreshTTL=0 => los refresh viven hasta logout.
func New(refreshTTL time.Duration) *Store {
	ttl := refreshTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Store{
		users:   make(map[string]*core.User),
		byID:    make(map[uuid.UUID]string),
		byEmail: make(map[string]string),
		verify:  make(map[string]*core.VerificationToken),
		refresh: gocache.New(ttl, 5*time.Minute),
	}
}

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close()                         {}

// ───────────────────────── users ─────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return core.ErrConflict
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return core.ErrConflict
	}
	cp := *u
	s.users[u.Username] = &cp
	s.byID[u.ID] = u.Username
	s.byEmail[u.Email] = u.Username
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) EnableUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.byID[userID]
	if !ok {
		return core.ErrNotFound
	}
	s.users[name].Enabled = true
	return nil
}

// ───────────────────────── refresh tokens ─────────────────────────
// go-cache es seguro para acceso concurrente; la expiración la maneja el TTL
// del cache cuando está configurado.

func (s *Store) InsertRefreshToken(ctx context.Context, tokenHash string, createdAt time.Time) error {
	s.refresh.SetDefault(tokenHash, core.RefreshToken{TokenHash: tokenHash, CreatedAt: createdAt})
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error) {
	v, ok := s.refresh.Get(tokenHash)
	if !ok {
		return nil, core.ErrNotFound
	}
	rt := v.(core.RefreshToken)
	return &rt, nil
}

func (s *Store) DeleteRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	s.refresh.Delete(tokenHash)
	return nil
}

// ───────────────────────── verification tokens ─────────────────────────

func (s *Store) InsertVerificationToken(ctx context.Context, t *core.VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.verify[t.Token] = &cp
	return nil
}

func (s *Store) UseVerificationToken(ctx context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.verify[token]
	if !ok {
		return uuid.Nil, core.ErrNotFound
	}
	delete(s.verify, token)
	return t.UserID, nil
}
