package storage

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vpnstack/backup/internal/config"
)

func TestSSHCommands(t *testing.T) {
	Convey("Given the remote command builders", t, func() {
		Convey("mkdirCommand", func() {
			So(mkdirCommand("/srv/backups"), ShouldEqual, "mkdir -p '/srv/backups'")
		})

		Convey("uploadCommand", func() {
			cmd := uploadCommand("/srv/backups", "db_appdb_20260823_143005.sql.gz")
			So(cmd, ShouldEqual, "cat > '/srv/backups/db_appdb_20260823_143005.sql.gz'")
		})

		Convey("sweepCommand", func() {
			cmd := sweepCommand("/srv/backups", "appdb", 7)

			Convey("It should scope the sweep to this database's pattern and age", func() {
				So(cmd, ShouldContainSubstring, "find '/srv/backups'")
				So(cmd, ShouldContainSubstring, "-name 'db_appdb_*.sql.gz'")
				So(cmd, ShouldContainSubstring, "-mtime +7")
				So(cmd, ShouldContainSubstring, "-delete")
			})

			Convey("It should tolerate a missing remote directory", func() {
				So(cmd, ShouldStartWith, "[ -d '/srv/backups' ] &&")
				So(cmd, ShouldEndWith, "|| true")
			})
		})

		Convey("shellQuote", func() {
			Convey("It should pass plain strings through quoted", func() {
				So(shellQuote("backups"), ShouldEqual, "'backups'")
			})

			Convey("It should escape embedded single quotes", func() {
				So(shellQuote("it's"), ShouldEqual, `'it'\''s'`)
			})
		})
	})
}

func TestSSHReplicaPaths(t *testing.T) {
	Convey("Given an SSHReplica", t, func() {
		replica := NewSSH(config.RemoteConfig{
			Host:    "backup.example.com",
			Port:    22,
			User:    "backup",
			Dir:     "/srv/backups",
			KeyFile: "/etc/backup/id_ed25519",
		})

		Convey("RemotePath joins the remote directory and filename", func() {
			So(replica.RemotePath("db_appdb_20260823_143005.sql.gz"),
				ShouldEqual, "/srv/backups/db_appdb_20260823_143005.sql.gz")
		})
	})
}
