package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Namespaces of the persisted client blobs.
const (
	CartNamespace     = "cart-storage"
	WishlistNamespace = "wishlist-storage"
	AuthNamespace     = "auth-storage"
)

type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Persister reads and writes one named, versioned blob.
type Persister struct {
	blobs   BlobStore
	key     string
	version int
	logger  *zap.Logger
}

func NewPersister(blobs BlobStore, namespace, owner string, version int, logger *zap.Logger) *Persister {
	return &Persister{
		blobs:   blobs,
		key:     Key(namespace, owner),
		version: version,
		logger:  logger,
	}
}

func Key(namespace, owner string) string {
	return fmt.Sprintf("%s:%s", namespace, owner)
}

func (p *Persister) Key() string {
	return p.key
}

// Load decodes the stored state into dst. It reports false when the blob is
// missing, unreadable, corrupt or written by another version; dst is then untouched.
func (p *Persister) Load(ctx context.Context, dst any) bool {
	data, err := p.blobs.Load(ctx, p.key)
	if errors.Is(err, ErrBlobNotFound) {
		return false
	}
	if err != nil {
		p.logger.Warn("state load failed, starting empty", zap.String("key", p.key), zap.Error(err))
		return false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		p.logger.Warn("corrupt state blob, starting empty", zap.String("key", p.key), zap.Error(err))
		return false
	}
	if env.Version != p.version {
		p.logger.Info("state blob version mismatch, starting empty",
			zap.String("key", p.key),
			zap.Int("stored", env.Version),
			zap.Int("expected", p.version))
		return false
	}
	if err := json.Unmarshal(env.State, dst); err != nil {
		p.logger.Warn("corrupt state payload, starting empty", zap.String("key", p.key), zap.Error(err))
		return false
	}
	return true
}

// Save writes v through to the blob store. Failures are logged and swallowed:
// the in-memory copy stays authoritative for the current session.
func (p *Persister) Save(ctx context.Context, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("marshal state failed", zap.String("key", p.key), zap.Error(err))
		return
	}
	data, err := json.Marshal(envelope{State: payload, Version: p.version})
	if err != nil {
		p.logger.Error("marshal state envelope failed", zap.String("key", p.key), zap.Error(err))
		return
	}
	if err := p.blobs.Save(ctx, p.key, data); err != nil {
		p.logger.Warn("state save failed", zap.String("key", p.key), zap.Error(err))
	}
}
