package domain

import (
	"errors"
	"fmt"
)

// Process exit codes. Dump failures are the exception: they surface the
// dump tool's own exit code when it is known.
const (
	ExitOK                 = 0
	ExitGeneric            = 1
	ExitConfig             = 2
	ExitServiceUnavailable = 3
	ExitReplication        = 4
)

// ConfigError covers missing or invalid settings. It always fires before
// any side effect.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Reason
}

// ServiceUnavailableError means the database container is not running.
// The job never attempts to start it.
type ServiceUnavailableError struct {
	Container string
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("database container %q is not running", e.Container)
}

// DumpError carries the dump tool's exit code and whatever it wrote to
// stderr before dying.
type DumpError struct {
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *DumpError) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("pg_dump exited with code %d: %s", e.ExitCode, e.Diagnostics)
	}
	return fmt.Sprintf("pg_dump failed: %v", e.Err)
}

func (e *DumpError) Unwrap() error { return e.Err }

// ReplicationError covers any failed remote step: unreachable host, auth
// failure, or a remote command exiting non-zero. It aborts the run before
// any retention sweep.
type ReplicationError struct {
	Op  string
	Err error
}

func (e *ReplicationError) Error() string {
	return fmt.Sprintf("replication: %s: %v", e.Op, e.Err)
}

func (e *ReplicationError) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		cfgErr  *ConfigError
		svcErr  *ServiceUnavailableError
		dumpErr *DumpError
		replErr *ReplicationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &svcErr):
		return ExitServiceUnavailable
	case errors.As(err, &dumpErr):
		if dumpErr.ExitCode > 0 {
			return dumpErr.ExitCode
		}
		return ExitGeneric
	case errors.As(err, &replErr):
		return ExitReplication
	}
	return ExitGeneric
}
