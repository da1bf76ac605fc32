package domain

import (
	"context"
	"io"
)

// Database is the dump source.
type Database interface {
	// Name returns the logical database name used in snapshot filenames.
	Name() string
	// Ping verifies the database service is reachable without starting it.
	Ping(ctx context.Context) error
	// Dump streams the raw (uncompressed) dump into w, exactly once.
	Dump(ctx context.Context, w io.Writer) error
}
