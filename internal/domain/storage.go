package domain

import (
	"context"
	"time"
)

// Storage is an offsite target holding snapshot copies. All of its
// operations are best-effort from the job's point of view.
type Storage interface {
	Upload(ctx context.Context, localPath string, remoteName string) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, remoteName string) error
	GetOldFiles(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Replicator is the primary remote replica channel. Unlike Storage, its
// EnsureDir and Upload failures are fatal to the run.
type Replicator interface {
	EnsureDir(ctx context.Context) error
	Upload(ctx context.Context, localPath string, remoteName string) error
	// Sweep deletes remote snapshots of the database older than the given
	// number of days. A missing remote directory is not an error.
	Sweep(ctx context.Context, database string, olderThanDays int) error
	RemotePath(remoteName string) string
}

// Notifier delivers completion and failure reports out of band.
type Notifier interface {
	NotifySuccess(ctx context.Context, res *Result) error
	NotifyFailure(ctx context.Context, database string, err error) error
}
