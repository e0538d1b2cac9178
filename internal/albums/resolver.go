// Package albums resolves album names to remote album IDs.
//
// The persisted cache is the only source of truth: the remote service
// cannot list albums created under other client identities, so a cache
// miss always means "create a new remote album". Losing the cache means
// the next run recreates every album; that duplication is an accepted
// consequence, not something this package tries to repair.
package albums

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/photoslib"
	"shoebox/internal/services"
)

// Resolver answers "what is the remote ID for this album name",
// creating the album remotely on first sight of a name. Resolution per
// name is serialized so one run never creates the same album twice.
type Resolver struct {
	store   *ledger.Store
	remote  photoslib.Service
	dryRun  bool
	logger  *slog.Logger
	mu      sync.Mutex
	pending map[string]string
}

func NewResolver(store *ledger.Store, remote photoslib.Service, dryRun bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:   store,
		remote:  remote,
		dryRun:  dryRun,
		logger:  logging.NewComponentLogger(logger, "albums"),
		pending: make(map[string]string),
	}
}

// Resolve returns the remote album ID for a name: cached ID if present,
// otherwise one remote create whose result is written through to the
// cache before returning. In dry-run mode a placeholder ID is handed
// out and nothing is created or persisted.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.pending[name]; ok {
		return id, nil
	}

	id, ok, err := r.store.AlbumID(ctx, name)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "albums", "read cache", name, err)
	}
	if ok {
		r.pending[name] = id
		return id, nil
	}

	if r.dryRun {
		id = fmt.Sprintf("dry-run-album-%d", len(r.pending)+1)
		r.pending[name] = id
		r.logger.Info("would create album", logging.String("album", name))
		return id, nil
	}

	id, err = r.remote.CreateAlbum(ctx, name)
	if err != nil {
		return "", err
	}
	if err := r.store.PutAlbum(ctx, name, id); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "albums", "persist cache entry", name, err)
	}
	r.pending[name] = id
	r.logger.Info("created album", logging.String("album", name), logging.String("id", id))
	return id, nil
}
