package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vpnstack/backup/internal/config"
	"github.com/vpnstack/backup/internal/domain"
)

// SnapshotStore is the local snapshot directory as the use case sees it.
type SnapshotStore interface {
	EnsureDir() error
	Create(name string) (io.WriteCloser, error)
	Path(name string) string
	Size(name string) (int64, error)
	Remove(name string) error
	Expired(ctx context.Context, database string, cutoff time.Time) ([]string, error)
}

type Logger interface {
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
}

// Offsite is a named best-effort snapshot target.
type Offsite struct {
	Name  string
	Store domain.Storage
}

// Backup runs one strictly sequential backup invocation:
// enabled check, liveness, dump pipeline, replication, retention sweeps,
// completion report. Every external call is attempted exactly once.
type Backup struct {
	cfg        *config.Config
	db         domain.Database
	store      SnapshotStore
	compressor domain.Compressor
	replicator domain.Replicator // nil when replication is not configured
	offsite    []Offsite
	notifier   domain.Notifier // nil when notifications are not configured
	logger     Logger
	now        func() time.Time
}

func NewBackup(
	cfg *config.Config,
	db domain.Database,
	store SnapshotStore,
	compressor domain.Compressor,
	replicator domain.Replicator,
	offsite []Offsite,
	notifier domain.Notifier,
	logger Logger,
) *Backup {
	return &Backup{
		cfg:        cfg,
		db:         db,
		store:      store,
		compressor: compressor,
		replicator: replicator,
		offsite:    offsite,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

func (uc *Backup) Execute(ctx context.Context) (*domain.Result, error) {
	res, err := uc.execute(ctx)
	if err != nil && uc.notifier != nil {
		if nerr := uc.notifier.NotifyFailure(ctx, uc.db.Name(), err); nerr != nil {
			uc.logger.Warnf("Failure notification not delivered: %v", nerr)
		}
	}
	return res, err
}

func (uc *Backup) execute(ctx context.Context) (*domain.Result, error) {
	if !uc.cfg.Backup.Enabled {
		uc.logger.Infof("Backups are disabled (BACKUP_ENABLED=false), nothing to do")
		return &domain.Result{Skipped: true}, nil
	}

	start := uc.now()
	database := uc.db.Name()
	uc.logger.Infof("[%s] Starting backup...", database)

	if err := uc.store.EnsureDir(); err != nil {
		return nil, fmt.Errorf("prepare backup directory: %w", err)
	}

	if err := uc.db.Ping(ctx); err != nil {
		return nil, err
	}

	snap, err := uc.produceSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	res := &domain.Result{Snapshot: *snap}

	if uc.replicator != nil && uc.cfg.RemoteConfigured() {
		if !uc.cfg.RemoteKeyExists() {
			uc.logger.Warnf("[%s] SSH key %s not found, skipping remote replication",
				database, uc.cfg.Remote.KeyFile)
		} else {
			if err := uc.replicate(ctx, snap); err != nil {
				return res, err
			}
			res.Replicated = true
			res.RemotePath = uc.replicator.RemotePath(snap.Filename)
		}
	}

	uc.uploadOffsite(ctx, snap)

	cutoff := uc.now().AddDate(0, 0, -uc.cfg.Backup.RetentionDays)
	res.LocalPruned = uc.sweepLocal(ctx, cutoff)
	if res.Replicated {
		uc.sweepRemote(ctx)
	}
	uc.sweepOffsite(ctx, cutoff)

	uc.logger.Infof("[%s] Backup completed in %s: %s",
		database, uc.now().Sub(start).Round(time.Second), snap.LocalPath)
	if res.Replicated {
		uc.logger.Infof("[%s] Remote replica: %s", database, res.RemotePath)
	}

	if uc.notifier != nil {
		if err := uc.notifier.NotifySuccess(ctx, res); err != nil {
			uc.logger.Warnf("[%s] Completion notification not delivered: %v", database, err)
		}
	}

	return res, nil
}

// produceSnapshot runs the dump|gzip|file pipeline. The dump streams
// straight into the final path; if any stage fails the partial file is
// removed, so an observer sees either no snapshot or a complete one.
func (uc *Backup) produceSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	database := uc.db.Name()
	createdAt := uc.now()
	filename := domain.SnapshotFilename(database, createdAt)

	out, err := uc.store.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	gz, err := uc.compressor.WrapWriter(out)
	if err != nil {
		out.Close()
		uc.removePartial(filename)
		return nil, fmt.Errorf("start compression: %w", err)
	}

	uc.logger.Infof("[%s] Dumping into %s", database, uc.store.Path(filename))

	dumpErr := uc.db.Dump(ctx, gz)
	if cerr := gz.Close(); dumpErr == nil && cerr != nil {
		dumpErr = fmt.Errorf("finalize compression: %w", cerr)
	}
	if cerr := out.Close(); dumpErr == nil && cerr != nil {
		dumpErr = fmt.Errorf("finalize snapshot: %w", cerr)
	}
	if dumpErr != nil {
		uc.removePartial(filename)
		return nil, dumpErr
	}

	size, err := uc.store.Size(filename)
	if err != nil {
		return nil, err
	}

	uc.logger.Infof("[%s] Snapshot created, size: %.2f MB",
		database, float64(size)/(1024*1024))

	return &domain.Snapshot{
		Filename:  filename,
		LocalPath: uc.store.Path(filename),
		Size:      size,
		CreatedAt: createdAt,
	}, nil
}

func (uc *Backup) removePartial(filename string) {
	if err := uc.store.Remove(filename); err != nil {
		uc.logger.Warnf("[%s] Could not remove partial snapshot %s: %v",
			uc.db.Name(), filename, err)
	}
}

func (uc *Backup) replicate(ctx context.Context, snap *domain.Snapshot) error {
	uc.logger.Infof("[%s] Replicating to %s@%s:%s",
		uc.db.Name(), uc.cfg.Remote.User, uc.cfg.Remote.Host, uc.cfg.Remote.Dir)

	if err := uc.replicator.EnsureDir(ctx); err != nil {
		return &domain.ReplicationError{Op: "ensure remote directory", Err: err}
	}
	if err := uc.replicator.Upload(ctx, snap.LocalPath, snap.Filename); err != nil {
		return &domain.ReplicationError{Op: "transfer snapshot", Err: err}
	}

	uc.logger.Infof("[%s] Successfully replicated %s", uc.db.Name(), snap.Filename)
	return nil
}

func (uc *Backup) uploadOffsite(ctx context.Context, snap *domain.Snapshot) {
	database := uc.db.Name()
	for _, target := range uc.offsite {
		uc.logger.Infof("[%s] Uploading to %s...", database, target.Name)
		if err := target.Store.Upload(ctx, snap.LocalPath, snap.Filename); err != nil {
			uc.logger.Errorf("[%s] Failed to upload to %s: %v", database, target.Name, err)
			continue
		}
		uc.logger.Infof("[%s] Successfully uploaded to %s", database, target.Name)
	}
}
