// Package backend assembles the external clients the portal talks to
// (database pool, file store, role cache, connectivity watcher) into one
// explicit value that is passed to whoever needs it. Nothing here is a
// package-level singleton; tests build their own Clients with fakes.
package backend

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/medsta/portal/internal/config"
	"github.com/medsta/portal/internal/platform/authx"
	"github.com/medsta/portal/internal/platform/connectivity"
	"github.com/medsta/portal/internal/platform/db"
	"github.com/medsta/portal/internal/platform/filestore"
)

// Clients bundles every external dependency of the portal.
type Clients struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Files     filestore.FileStore
	RoleCache *authx.RoleCache
	Watcher   *connectivity.Watcher
	Log       zerolog.Logger
}

// New connects the clients described by the configuration. A missing
// DATABASE_URL leaves Pool nil; the caller decides which routes can
// still be served. Initialization is idempotent in effect: building a
// second Clients from the same config yields an equivalent set.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Clients, error) {
	c := &Clients{
		Config:    cfg,
		RoleCache: authx.NewRoleCache(afero.NewOsFs(), cfg.RoleCachePath),
		Watcher:   connectivity.NewWatcher(log),
		Log:       log,
	}

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			// The pool failing to come up is a connectivity problem,
			// not a configuration one; start degraded and let the
			// watcher recover the lists once the database is back.
			log.Warn().Err(err).Msg("database unreachable at startup")
			c.Watcher.Offline()
		} else {
			c.Pool = pool
		}
	}

	if cfg.StorageBucket != "" {
		s3, err := filestore.NewS3Store(ctx, cfg.AWSRegion, cfg.StorageBucket)
		if err != nil {
			return nil, fmt.Errorf("connect file store: %w", err)
		}
		c.Files = s3
	} else {
		c.Files = filestore.NewMemoryStore()
	}

	return c, nil
}

// Close releases held connections.
func (c *Clients) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
