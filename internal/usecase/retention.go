package usecase

import (
	"context"
	"time"

	"github.com/vpnstack/backup/internal/domain"
)

// Retention sweeps are best-effort across the board: a file that cannot be
// deleted today will still be expired tomorrow.

func (uc *Backup) sweepLocal(ctx context.Context, cutoff time.Time) int {
	database := uc.db.Name()

	expired, err := uc.store.Expired(ctx, database, cutoff)
	if err != nil {
		uc.logger.Warnf("[%s] Local retention sweep failed: %v", database, err)
		return 0
	}

	deleted := 0
	for _, name := range expired {
		if err := uc.store.Remove(name); err != nil {
			uc.logger.Warnf("[%s] Failed to delete expired snapshot %s: %v", database, name, err)
			continue
		}
		uc.logger.Infof("[%s] Deleted expired snapshot: %s", database, name)
		deleted++
	}

	if deleted > 0 {
		uc.logger.Infof("[%s] Pruned %d expired snapshot(s), retention: %d days",
			database, deleted, uc.cfg.Backup.RetentionDays)
	}
	return deleted
}

func (uc *Backup) sweepRemote(ctx context.Context) {
	database := uc.db.Name()
	if err := uc.replicator.Sweep(ctx, database, uc.cfg.Backup.RetentionDays); err != nil {
		uc.logger.Warnf("[%s] Remote retention sweep failed: %v", database, err)
	}
}

func (uc *Backup) sweepOffsite(ctx context.Context, cutoff time.Time) {
	database := uc.db.Name()

	for _, target := range uc.offsite {
		old, err := target.Store.GetOldFiles(ctx, cutoff)
		if err != nil {
			uc.logger.Warnf("[%s] Retention sweep on %s failed: %v", database, target.Name, err)
			continue
		}

		for _, name := range old {
			if !domain.MatchSnapshot(name, database) {
				continue
			}
			if err := target.Store.Delete(ctx, name); err != nil {
				uc.logger.Warnf("[%s] Failed to delete %s from %s: %v", database, name, target.Name, err)
				continue
			}
			uc.logger.Infof("[%s] Deleted expired snapshot from %s: %s", database, target.Name, name)
		}
	}
}
