// Package logging configures the client's structured log output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options selects the log sink and verbosity.
type Options struct {
	// File switches from the stderr text sink to the JSONL state file.
	File  bool
	Debug bool
	// Stderr receives text logs; nil means os.Stderr.
	Stderr io.Writer
}

// Runtime bundles the configured logger and its open file handle lifecycle.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

// Close flushes and closes the logger output sink.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New builds a text logger on stderr, or a JSONL logger rooted at the
// resolved state path when opts.File is set.
func New(opts Options) (Runtime, error) {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if opts.Debug {
		handlerOpts.Level = slog.LevelDebug
	}

	if !opts.File {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		return Runtime{Logger: slog.New(slog.NewTextHandler(w, handlerOpts))}, nil
	}

	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, err
	}

	logger := slog.New(slog.NewJSONHandler(f, handlerOpts))
	return Runtime{Logger: logger, Path: path, closer: f}, nil
}

// resolveLogPath selects XDG_STATE_HOME when available, otherwise ~/.local/state.
func resolveLogPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "sdwdate-gui", "client.log.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "sdwdate-gui", "client.log.jsonl"), nil
}
