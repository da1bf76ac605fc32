package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vpnstack/backup/internal/domain"
)

// withEnv sets variables for one test branch and returns the cleanup for
// Convey's Reset.
func withEnv(vars map[string]string) func() {
	for k, v := range vars {
		os.Setenv(k, v)
	}
	return func() {
		for k := range vars {
			os.Unsetenv(k)
		}
	}
}

func TestLoad(t *testing.T) {
	Convey("Given configuration from the environment", t, func() {
		Convey("When only the required settings are present", func() {
			Reset(withEnv(map[string]string{
				"DB_NAME": "appdb",
				"DB_USER": "appuser",
			}))

			cfg, err := Load("")

			Convey("It should apply the documented defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Backup.Enabled, ShouldBeTrue)
				So(cfg.Database.Name, ShouldEqual, "appdb")
				So(cfg.Database.User, ShouldEqual, "appuser")
				So(cfg.Database.Container, ShouldEqual, "vpn_db")
				So(cfg.Backup.LocalDir, ShouldEqual, "backups")
				So(cfg.Backup.RetentionDays, ShouldEqual, 7)
				So(cfg.Remote.Port, ShouldEqual, 22)
				So(cfg.RemoteConfigured(), ShouldBeFalse)
				So(cfg.S3Configured(), ShouldBeFalse)
				So(cfg.TelegramConfigured(), ShouldBeFalse)
			})
		})

		Convey("When the job is disabled", func() {
			for _, value := range []string{"false", "FALSE", "False", "0", "no", "off"} {
				Convey("With BACKUP_ENABLED="+value, func() {
					// Required settings deliberately absent: the disabled
					// check precedes validation.
					Reset(withEnv(map[string]string{"BACKUP_ENABLED": value}))

					cfg, err := Load("")

					Convey("It should load without validating", func() {
						So(err, ShouldBeNil)
						So(cfg.Backup.Enabled, ShouldBeFalse)
					})
				})
			}

			Convey("With an unrecognized BACKUP_ENABLED value", func() {
				Reset(withEnv(map[string]string{
					"BACKUP_ENABLED": "definitely",
					"DB_NAME":        "appdb",
					"DB_USER":        "appuser",
				}))

				cfg, err := Load("")

				Convey("It should stay enabled", func() {
					So(err, ShouldBeNil)
					So(cfg.Backup.Enabled, ShouldBeTrue)
				})
			})
		})

		Convey("When required settings are missing", func() {
			Convey("With both DB_NAME and DB_USER absent", func() {
				_, err := Load("")

				Convey("It should list both fields", func() {
					So(err, ShouldNotBeNil)
					var cfgErr *domain.ConfigError
					So(err, ShouldHaveSameTypeAs, cfgErr)
					So(err.Error(), ShouldContainSubstring, "DB_NAME")
					So(err.Error(), ShouldContainSubstring, "DB_USER")
				})
			})

			Convey("With only DB_USER absent", func() {
				Reset(withEnv(map[string]string{"DB_NAME": "appdb"}))

				_, err := Load("")

				Convey("It should list the missing field only", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "DB_USER")
					So(err.Error(), ShouldNotContainSubstring, "DB_NAME,")
				})
			})
		})

		Convey("When the retention window is not a positive integer", func() {
			Reset(withEnv(map[string]string{
				"DB_NAME":               "appdb",
				"DB_USER":               "appuser",
				"BACKUP_RETENTION_DAYS": "0",
			}))

			_, err := Load("")

			Convey("It should fail validation", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "BACKUP_RETENTION_DAYS")
			})
		})

		Convey("When remote settings are partially present", func() {
			Reset(withEnv(map[string]string{
				"DB_NAME":            "appdb",
				"DB_USER":            "appuser",
				"BACKUP_REMOTE_HOST": "backup.example.com",
				"BACKUP_REMOTE_USER": "backup",
				"BACKUP_REMOTE_DIR":  "/srv/backups",
			}))

			cfg, err := Load("")

			Convey("Replication should stay disabled and the load succeed", func() {
				So(err, ShouldBeNil)
				So(cfg.RemoteConfigured(), ShouldBeFalse)
			})
		})

		Convey("When all four remote settings are present", func() {
			Reset(withEnv(map[string]string{
				"DB_NAME":            "appdb",
				"DB_USER":            "appuser",
				"BACKUP_REMOTE_HOST": "backup.example.com",
				"BACKUP_REMOTE_USER": "backup",
				"BACKUP_REMOTE_DIR":  "/srv/backups",
				"BACKUP_SSH_KEY":     "/etc/backup/id_ed25519",
			}))

			cfg, err := Load("")

			Convey("Replication should be enabled", func() {
				So(err, ShouldBeNil)
				So(cfg.RemoteConfigured(), ShouldBeTrue)
			})
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	Convey("Given an env-format config file", t, func() {
		tempDir, err := os.MkdirTemp("", "config_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When the file provides the settings", func() {
			path := filepath.Join(tempDir, "backup.env")
			content := "DB_NAME=appdb\nDB_USER=appuser\nBACKUP_RETENTION_DAYS=3\n"
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

			cfg, err := Load(path)

			Convey("It should load them", func() {
				So(err, ShouldBeNil)
				So(cfg.Database.Name, ShouldEqual, "appdb")
				So(cfg.Backup.RetentionDays, ShouldEqual, 3)
			})
		})

		Convey("When the environment overrides the file", func() {
			path := filepath.Join(tempDir, "backup.env")
			content := "DB_NAME=appdb\nDB_USER=appuser\nBACKUP_LOCAL_DIR=/from/file\n"
			So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

			Reset(withEnv(map[string]string{"BACKUP_LOCAL_DIR": "/from/env"}))

			cfg, err := Load(path)

			Convey("The environment value should win", func() {
				So(err, ShouldBeNil)
				So(cfg.Backup.LocalDir, ShouldEqual, "/from/env")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := Load(filepath.Join(tempDir, "missing.env"))

			Convey("It should be a configuration error", func() {
				So(err, ShouldNotBeNil)
				var cfgErr *domain.ConfigError
				So(err, ShouldHaveSameTypeAs, cfgErr)
			})
		})
	})
}

func TestRemoteKeyExists(t *testing.T) {
	Convey("Given a remote configuration", t, func() {
		tempDir, err := os.MkdirTemp("", "config_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When the key file exists", func() {
			keyPath := filepath.Join(tempDir, "id_ed25519")
			So(os.WriteFile(keyPath, []byte("key material"), 0o600), ShouldBeNil)

			cfg := &Config{Remote: RemoteConfig{KeyFile: keyPath}}
			So(cfg.RemoteKeyExists(), ShouldBeTrue)
		})

		Convey("When the key file is missing", func() {
			cfg := &Config{Remote: RemoteConfig{KeyFile: filepath.Join(tempDir, "nope")}}
			So(cfg.RemoteKeyExists(), ShouldBeFalse)
		})
	})
}
