package app

import (
	"context"
	"fmt"

	"github.com/vpnstack/backup/internal/adapter/compressor"
	"github.com/vpnstack/backup/internal/adapter/database"
	"github.com/vpnstack/backup/internal/adapter/notify"
	"github.com/vpnstack/backup/internal/adapter/storage"
	"github.com/vpnstack/backup/internal/config"
	"github.com/vpnstack/backup/internal/domain"
	"github.com/vpnstack/backup/internal/infrastructure/logger"
	"github.com/vpnstack/backup/internal/infrastructure/scheduler"
	"github.com/vpnstack/backup/internal/usecase"
)

type App struct {
	config *config.Config
	logger *logger.Logger
	backup *usecase.Backup
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &App{config: cfg, logger: log}

	db := database.NewPostgres(cfg.Database)
	store := storage.NewLocal(cfg.Backup.LocalDir)
	comp := compressor.NewGzip()

	// A disabled job must leave no trace, so nothing network-facing gets
	// built; the Telegram client in particular talks to the API on
	// construction.
	if !cfg.Backup.Enabled {
		a.backup = usecase.NewBackup(cfg, db, store, comp, nil, nil, nil, log)
		return a, nil
	}

	var replicator domain.Replicator
	if cfg.RemoteConfigured() {
		replicator = storage.NewSSH(cfg.Remote)
		log.Infof("✓ Remote replication enabled (%s@%s:%s)",
			cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Dir)
	}

	var offsite []usecase.Offsite
	if cfg.S3Configured() {
		s3Store, err := storage.NewS3(cfg.S3)
		if err != nil {
			log.Errorf("Failed to initialize S3 target: %v", err)
		} else {
			offsite = append(offsite, usecase.Offsite{Name: "s3", Store: s3Store})
			log.Infof("✓ S3 offsite target enabled (bucket: %s)", cfg.S3.Bucket)
		}
	}

	var notifier domain.Notifier
	if cfg.TelegramConfigured() {
		tg, err := notify.NewTelegram(cfg.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram notifications: %v", err)
		} else {
			notifier = tg
			log.Infof("✓ Telegram notifications enabled")
		}
	}

	a.backup = usecase.NewBackup(cfg, db, store, comp, replicator, offsite, notifier, log)
	return a, nil
}

// Run executes the backup once, or on a cron schedule when BACKUP_SCHEDULE
// is set. In daemon mode job failures are logged and the daemon keeps
// running; the scheduler re-fires the whole job later.
func (a *App) Run(ctx context.Context) error {
	if !a.config.Backup.Enabled || a.config.Backup.Schedule == "" {
		_, err := a.backup.Execute(ctx)
		return err
	}

	sched := scheduler.New()
	if err := sched.AddJob(a.config.Backup.Schedule, func(jobCtx context.Context) error {
		if _, err := a.backup.Execute(jobCtx); err != nil {
			a.logger.Errorf("Scheduled backup failed: %v", err)
			return err
		}
		return nil
	}); err != nil {
		return &domain.ConfigError{Reason: fmt.Sprintf("invalid BACKUP_SCHEDULE %q: %v", a.config.Backup.Schedule, err)}
	}

	sched.Start()
	a.logger.Infof("Scheduler started: %s", a.config.Backup.Schedule)

	<-ctx.Done()
	sched.Stop()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Close()
}
