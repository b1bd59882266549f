package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"io.winapps.babytracker/internal/config"
	firebaseutil "io.winapps.babytracker/internal/firebase"
)

// Open builds the object store selected by cfg.Driver. The returned
// cleanup releases the underlying clients.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.SugaredLogger) (ObjectStore, func(), error) {
	switch cfg.Driver {
	case config.DriverFirebase:
		app, err := firebaseutil.InitFirebase(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		fb, err := firebaseutil.GetStorageClient(ctx, app)
		if err != nil {
			return nil, nil, err
		}
		admin, err := firebaseutil.NewAdminClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := admin.Close(); err != nil {
				logger.Warnw("Failed to close storage admin client", "error", err)
			}
		}
		return NewFirebaseStore(fb, admin, cfg.FirebaseProjectID, cfg.Buckets(), logger), cleanup, nil
	case config.DriverLocal:
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// EnsureBuckets creates every media bucket that does not exist yet.
func EnsureBuckets(ctx context.Context, store ObjectStore) error {
	for _, b := range Buckets() {
		if err := store.EnsureBucket(ctx, b); err != nil {
			return fmt.Errorf("bucket %s: %w", b, err)
		}
	}
	return nil
}
