package organizer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another run holds the root's lock.
var ErrAlreadyRunning = errors.New("another organize run is active for this directory")

// lockPath derives a per-root lock file name so unrelated roots do not contend.
func lockPath(dir, root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(dir, "organize-"+hex.EncodeToString(sum[:8])+".lock")
}

func acquireRootLock(dir, root string) (*flock.Flock, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath(dir, root))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, root)
	}
	return lock, nil
}

func releaseLock(lock *flock.Flock) error {
	if lock == nil {
		return nil
	}
	return lock.Unlock()
}
