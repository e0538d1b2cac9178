// Package runlock guards against two shoebox invocations mutating the
// same state directory at once. The cache and ledger are single-writer
// by design; a second concurrent run would race them.
package runlock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"shoebox/internal/services"
)

// Lock holds the process-wide file lock for one invocation.
type Lock struct {
	flock *flock.Flock
}

// Acquire takes the lock file non-blockingly. A held lock means another
// invocation is running against the same state directory.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", "create state directory", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", "lock "+path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire",
			"another shoebox run holds "+path+"; wait for it to finish", nil)
	}
	return &Lock{flock: fl}, nil
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
