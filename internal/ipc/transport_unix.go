//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"freecastnotes/internal/userutil"
)

var endpointPattern = regexp.MustCompile(`^/[A-Za-z0-9._/-]{1,200}/freecastnotes-[A-Za-z0-9._-]{1,128}\.sock$`)

func defaultEndpoint() string {
	return filepath.Join(userutil.RuntimeDir(), "freecastnotes-"+userutil.CurrentUsername()+".sock")
}

func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, timeout)
}

// listen binds a unix socket readable only by the current user. A stale
// socket left by a crashed instance is removed; the single-instance lock
// guarantees no live server owns it.
func listen(endpoint string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(endpoint), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Remove(endpoint); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("[ipc] failed to remove stale socket", "path", endpoint, "error", err)
	}
	listener, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(endpoint, 0o600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return listener, nil
}
