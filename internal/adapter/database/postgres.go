package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/vpnstack/backup/internal/config"
	"github.com/vpnstack/backup/internal/domain"
)

// stderr from pg_dump is kept up to this many bytes in the error report.
const diagnosticsLimit = 4096

// Postgres dumps a PostgreSQL database running inside a Docker container,
// addressed by container name.
type Postgres struct {
	container string
	database  string
	user      string
}

func NewPostgres(cfg config.DatabaseConfig) *Postgres {
	return &Postgres{
		container: cfg.Container,
		database:  cfg.Name,
		user:      cfg.User,
	}
}

func (p *Postgres) Name() string {
	return p.database
}

// Ping checks that the container exists and is running. It never attempts
// to start it.
func (p *Postgres) Ping(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "docker", inspectArgs(p.container)...)
	out, err := cmd.Output()
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		return &domain.ServiceUnavailableError{Container: p.container}
	}
	return nil
}

// Dump streams pg_dump output into w. The tool's stderr is captured to a
// private temp file so it can be surfaced on failure; the temp file is
// removed on every path.
func (p *Postgres) Dump(ctx context.Context, w io.Writer) error {
	diag, err := os.CreateTemp("", "pg_dump_stderr_*")
	if err != nil {
		return fmt.Errorf("create diagnostics file: %w", err)
	}
	defer os.Remove(diag.Name())
	defer diag.Close()

	cmd := exec.CommandContext(ctx, "docker", dumpArgs(p.container, p.user, p.database)...)
	cmd.Stdout = w
	cmd.Stderr = diag

	if err := cmd.Run(); err != nil {
		code := 0
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &domain.DumpError{
			ExitCode:    code,
			Diagnostics: readDiagnostics(diag.Name()),
			Err:         err,
		}
	}
	return nil
}

func inspectArgs(container string) []string {
	return []string{"inspect", "--format", "{{.State.Running}}", container}
}

func dumpArgs(container, user, database string) []string {
	return []string{
		"exec", container,
		"pg_dump",
		"--username=" + user,
		"--no-password",
		database,
	}
}

func readDiagnostics(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	s := strings.TrimSpace(string(data))
	if len(s) > diagnosticsLimit {
		s = s[:diagnosticsLimit] + "..."
	}
	return s
}
