package domain

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotNaming(t *testing.T) {
	Convey("Given the snapshot naming scheme", t, func() {
		ts := time.Date(2026, 8, 23, 14, 30, 5, 0, time.UTC)

		Convey("SnapshotFilename", func() {
			Convey("It should produce the deterministic name", func() {
				So(SnapshotFilename("appdb", ts), ShouldEqual, "db_appdb_20260823_143005.sql.gz")
			})
		})

		Convey("MatchSnapshot", func() {
			Convey("It should match a snapshot of the same database", func() {
				So(MatchSnapshot("db_appdb_20260823_143005.sql.gz", "appdb"), ShouldBeTrue)
			})

			Convey("It should not match snapshots of other databases", func() {
				So(MatchSnapshot("db_otherdb_20260823_143005.sql.gz", "appdb"), ShouldBeFalse)
			})

			Convey("It should not match a database whose name is a prefix", func() {
				So(MatchSnapshot("db_appdb_extra_20260823_143005.sql.gz", "appdb"), ShouldBeFalse)
			})

			Convey("It should not match unrelated files", func() {
				So(MatchSnapshot("notes.txt", "appdb"), ShouldBeFalse)
				So(MatchSnapshot("db_appdb_20260823_143005.sql", "appdb"), ShouldBeFalse)
				So(MatchSnapshot("db_appdb_garbage.sql.gz", "appdb"), ShouldBeFalse)
			})
		})

		Convey("SnapshotTime", func() {
			Convey("When the filename round-trips", func() {
				name := SnapshotFilename("appdb", ts)
				parsed, err := SnapshotTime(name, "appdb")

				Convey("It should recover the timestamp", func() {
					So(err, ShouldBeNil)
					So(parsed.Equal(ts), ShouldBeTrue)
				})
			})

			Convey("When the filename belongs to another database", func() {
				_, err := SnapshotTime("db_otherdb_20260823_143005.sql.gz", "appdb")

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
				})
			})
		})

		Convey("SnapshotGlob", func() {
			Convey("It should scope the remote sweep to one database", func() {
				So(SnapshotGlob("appdb"), ShouldEqual, "db_appdb_*.sql.gz")
			})
		})
	})
}
