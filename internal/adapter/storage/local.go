package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vpnstack/backup/internal/domain"
)

// LocalStore is the snapshot directory on the local filesystem.
type LocalStore struct {
	basePath string
}

// NewLocal does not touch the filesystem; EnsureDir does, so a disabled
// run leaves no trace.
func NewLocal(basePath string) *LocalStore {
	return &LocalStore{basePath: basePath}
}

// EnsureDir creates the snapshot directory if absent. Idempotent.
func (l *LocalStore) EnsureDir() error {
	if err := os.MkdirAll(l.basePath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	return nil
}

func (l *LocalStore) Path(name string) string {
	return filepath.Join(l.basePath, name)
}

// Create opens the final snapshot path for writing. The dump is streamed
// straight into it; on failure the caller removes the partial file.
func (l *LocalStore) Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(l.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	return f, nil
}

func (l *LocalStore) Size(name string) (int64, error) {
	info, err := os.Stat(l.Path(name))
	if err != nil {
		return 0, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	return info.Size(), nil
}

func (l *LocalStore) Remove(name string) error {
	if err := os.Remove(l.Path(name)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Expired lists snapshots of the given database whose modification time is
// older than the cutoff. Files of other databases and unrelated files are
// never reported.
func (l *LocalStore) Expired(ctx context.Context, database string, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var expired []string
	for _, entry := range entries {
		if entry.IsDir() || !domain.MatchSnapshot(entry.Name(), database) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}
		if info.ModTime().Before(cutoff) {
			expired = append(expired, entry.Name())
		}
	}

	return expired, nil
}
