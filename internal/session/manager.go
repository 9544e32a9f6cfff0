package session

import (
	"context"
	"sync"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/auth"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/cart"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/state"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/wishlist"
	"go.uber.org/zap"
)

// Client is the state owned by one browser client, loaded for one operation.
type Client struct {
	ID       string
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Auth     *auth.Gate
}

// Manager gives callers exclusive access to a client's state. The state is
// read from the blob store on every call, so instances sharing a backend see
// each other's writes, and nothing is retained between calls.
type Manager struct {
	blobs     state.BlobStore
	directory *auth.Directory
	logger    *zap.Logger
	locks     *keyedMutex
}

func NewManager(blobs state.BlobStore, directory *auth.Directory, logger *zap.Logger) *Manager {
	return &Manager{
		blobs:     blobs,
		directory: directory,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// Do loads the client's state and runs fn with it. Calls for the same client
// are serialized; calls for different clients run in parallel.
func (m *Manager) Do(ctx context.Context, clientID string, fn func(*Client) error) error {
	unlock := m.locks.lock(clientID)
	defer unlock()

	return fn(m.load(ctx, clientID))
}

// ClearCart empties the cart of clientID.
func (m *Manager) ClearCart(ctx context.Context, clientID string) {
	_ = m.Do(ctx, clientID, func(c *Client) error {
		c.Cart.Clear(ctx)
		return nil
	})
}

func (m *Manager) load(ctx context.Context, clientID string) *Client {
	c := &Client{
		ID:       clientID,
		Cart:     cart.NewStore(ctx, m.persister(state.CartNamespace, clientID, cart.StateVersion)),
		Wishlist: wishlist.NewStore(ctx, m.persister(state.WishlistNamespace, clientID, wishlist.StateVersion)),
		Auth:     auth.NewGate(ctx, m.directory, m.persister(state.AuthNamespace, clientID, auth.StateVersion)),
	}

	m.logger.Debug("client state loaded",
		zap.String("client_id", clientID),
		zap.Int("cart_items", c.Cart.ItemCount()),
		zap.Bool("authenticated", c.Auth.IsAuthenticated()))
	return c
}

func (m *Manager) persister(namespace, clientID string, version int) *state.Persister {
	return state.NewPersister(m.blobs, namespace, clientID, version, m.logger)
}

// keyedMutex hands out one mutex per key. An entry lives only while some
// caller holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		k.mu.Lock()
		defer k.mu.Unlock()
		if l.refs--; l.refs == 0 {
			delete(k.locks, key)
		}
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
