package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	snapshotPrefix = "db_"
	snapshotSuffix = ".sql.gz"

	// TimestampLayout gives snapshots second resolution; overlapping
	// invocations within the same second are the scheduler's problem.
	TimestampLayout = "20060102_150405"
)

// Snapshot is one compressed dump on the local filesystem.
type Snapshot struct {
	Filename  string
	LocalPath string
	Size      int64
	CreatedAt time.Time
}

// Result is the completion report of one invocation.
type Result struct {
	Skipped     bool
	Snapshot    Snapshot
	Replicated  bool
	RemotePath  string
	LocalPruned int
}

func SnapshotFilename(database string, ts time.Time) string {
	return fmt.Sprintf("%s%s_%s%s", snapshotPrefix, database, ts.Format(TimestampLayout), snapshotSuffix)
}

var timestampPattern = regexp.MustCompile(`^\d{8}_\d{6}$`)

// MatchSnapshot reports whether filename is a snapshot of the given
// database. Snapshots of other databases and unrelated files never match,
// so retention sweeps cannot touch them.
func MatchSnapshot(filename, database string) bool {
	prefix := snapshotPrefix + database + "_"
	if !strings.HasPrefix(filename, prefix) || !strings.HasSuffix(filename, snapshotSuffix) {
		return false
	}
	ts := strings.TrimSuffix(strings.TrimPrefix(filename, prefix), snapshotSuffix)
	return timestampPattern.MatchString(ts)
}

// SnapshotTime extracts the creation timestamp encoded in the filename.
func SnapshotTime(filename, database string) (time.Time, error) {
	if !MatchSnapshot(filename, database) {
		return time.Time{}, fmt.Errorf("%s is not a snapshot of %s", filename, database)
	}
	ts := strings.TrimSuffix(strings.TrimPrefix(filename, snapshotPrefix+database+"_"), snapshotSuffix)
	return time.Parse(TimestampLayout, ts)
}

// SnapshotGlob is the shell glob used by the remote retention sweep.
func SnapshotGlob(database string) string {
	return snapshotPrefix + database + "_*" + snapshotSuffix
}
