package blob

import (
	"context"
	"fmt"

	"bharatid/internal/platform/config"
)

// New builds the configured backend wrapped in a SealedStore.
func New(ctx context.Context, cfg config.Storage) (Store, error) {
	var backend Store
	switch cfg.Backend {
	case config.StorageMemory:
		backend = NewMemoryStore()
	case config.StorageLocal:
		local, err := NewLocalStore(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		backend = local
	case config.StorageS3:
		remote, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		backend = remote
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	return NewSealedStore(backend, cfg.EncryptionSecret)
}
