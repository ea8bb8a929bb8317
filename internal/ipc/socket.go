package ipc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	SocketName    = "sdwdate-gui-server.socket"
	ServerPIDName = "server_pid"
)

var ErrSocketWaitTimeout = errors.New("timed out waiting for server socket")

// RuntimeDir returns the per-user directory the server publishes its socket in.
func RuntimeDir(uid int) string {
	return filepath.Join("/run/user", strconv.Itoa(uid), "sdwdate-gui")
}

// SocketPath returns the server socket path inside runDir.
func SocketPath(runDir string) string {
	return filepath.Join(runDir, SocketName)
}

// ServerPIDPath returns the path of the marker a locally launched server writes.
func ServerPIDPath(runDir string) string {
	return filepath.Join(runDir, ServerPIDName)
}

// WaitForSocket polls until path exists, ctx is done, or timeout elapses.
// A timeout <= 0 waits until ctx is done.
func WaitForSocket(ctx context.Context, path string, interval, timeout time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, err := os.Stat(path)
		if err == nil {
			return nil
		}
		if !isSocketMissing(err) {
			return fmt.Errorf("stat socket %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("%w: %s", ErrSocketWaitTimeout, path)
		case <-ticker.C:
		}
	}
}
