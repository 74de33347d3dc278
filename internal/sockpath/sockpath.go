// Package sockpath resolves the per-user socket directory and serializes
// the "two clients race to start a server" window with a lockfile
// (spec.md §5, §6).
package sockpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// Dir returns ${MUXKIT_SOCK_DIR}/muxkit-${uid}, creating it mode 0700 if
// it does not exist. MUXKIT_SOCK_DIR defaults to os.TempDir().
func Dir() (string, error) {
	base := os.Getenv("MUXKIT_SOCK_DIR")
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, fmt.Sprintf("muxkit-%d", os.Getuid()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("sockpath: mkdir %s: %w", dir, err)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return "", fmt.Errorf("sockpath: chmod %s: %w", dir, err)
	}
	return dir, nil
}

// Socket returns the default session's socket path inside Dir().
func Socket() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "default"), nil
}

// Lock is the startup-race lockfile next to the socket
// (${socket_path}.lock).
type Lock struct {
	fl *flock.Flock
}

// TryAcquire attempts a non-blocking exclusive lock on
// "<socketPath>.lock". ok is false if another process already holds it;
// the caller should then simply retry connecting to the socket instead of
// starting its own server.
func TryAcquire(socketPath string) (lock *Lock, ok bool, err error) {
	fl := flock.New(socketPath + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("sockpath: lock %s: %w", socketPath, err)
	}
	if !locked {
		return nil, false, nil
	}
	return &Lock{fl: fl}, true, nil
}

// Release unlocks and removes the lockfile.
func (l *Lock) Release() error {
	path := l.fl.Path()
	if err := l.fl.Unlock(); err != nil {
		return err
	}
	os.Remove(path)
	return nil
}

// ParseUID extracts the numeric uid a socket directory was created for.
func ParseUID(dir string) (int, error) {
	base := filepath.Base(dir)
	const prefix = "muxkit-"
	if len(base) <= len(prefix) || base[:len(prefix)] != prefix {
		return 0, fmt.Errorf("sockpath: %q is not a muxkit socket directory", dir)
	}
	return strconv.Atoi(base[len(prefix):])
}
