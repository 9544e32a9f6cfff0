package auth

import (
	"context"
	"sync"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/state"
)

const StateVersion = 1

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	User            domain.User `json:"user"`
	AuthenticatedAt time.Time   `json:"authenticated_at"`
}

type snapshot struct {
	Session *Session `json:"session"`
}

// Gate is a two-state machine: unauthenticated until a successful Login,
// authenticated until Logout. Sessions do not expire.
type Gate struct {
	mu      sync.RWMutex
	dir     *Directory
	session *Session
	persist *state.Persister
}

func NewGate(ctx context.Context, dir *Directory, p *state.Persister) *Gate {
	g := &Gate{dir: dir, persist: p}

	var snap snapshot
	if p.Load(ctx, &snap) && snap.Session != nil && snap.Session.User.ID != "" {
		g.session = snap.Session
	}
	return g
}

// Login replaces the current session on success. On failure the gate keeps
// whatever state it had and returns domain.ErrInvalidCredentials.
func (g *Gate) Login(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := g.dir.Authenticate(creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	s := &Session{User: user, AuthenticatedAt: time.Now().UTC()}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
	g.persist.Save(ctx, snapshot{Session: s})

	out := *s
	return &out, nil
}

func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = nil
	g.persist.Save(ctx, snapshot{})
}

func (g *Gate) CurrentSession() (*Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return nil, false
	}
	out := *g.session
	return &out, true
}

func (g *Gate) IsAuthenticated() bool {
	_, ok := g.CurrentSession()
	return ok
}

// IsAdmin is true only for an authenticated session with the admin role.
func (g *Gate) IsAdmin() bool {
	s, ok := g.CurrentSession()
	return ok && s.User.Role == domain.RoleAdmin
}
