// Package actions launches the local programs the server asks the client to open.
package actions

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"

	"github.com/whonix/sdwdate-gui/internal/config"
)

// Launcher starts configured commands detached from the caller and reaps
// them in the background. It implements rpc.Actions.
type Launcher struct {
	cfg    config.ActionsConfig
	logger *slog.Logger
	wg     sync.WaitGroup

	// exited is called after a launched process has been reaped.
	exited func(name string, err error)
}

// NewLauncher constructs a launcher for the configured action commands.
func NewLauncher(cfg config.ActionsConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Launcher{cfg: cfg, logger: logger}
}

func (l *Launcher) OpenTorControlPanel() { l.launch("tor_control_panel", l.cfg.TorControlPanel.Argv) }
func (l *Launcher) OpenSdwdateLog()      { l.launch("log_viewer", l.cfg.LogViewer.Argv) }
func (l *Launcher) RestartSdwdate()      { l.launch("restart_sdwdate", l.cfg.RestartSdwdate.Argv) }
func (l *Launcher) StopSdwdate()         { l.launch("stop_sdwdate", l.cfg.StopSdwdate.Argv) }

// Wait blocks until every launched process has been reaped.
func (l *Launcher) Wait() {
	l.wg.Wait()
}

func (l *Launcher) launch(name string, argv []string) {
	cmd, err := start(argv)
	if err != nil {
		l.logger.Error("action launch failed", "action", name, "error", err.Error())
		return
	}
	l.logger.Info("action launched", "action", name, "pid", cmd.Process.Pid)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		err := cmd.Wait()
		if err != nil {
			l.logger.Warn("action exited with error", "action", name, "error", err.Error())
		} else {
			l.logger.Debug("action exited", "action", name)
		}
		if l.exited != nil {
			l.exited(name, err)
		}
	}()
}

// start executes argv without tying its lifetime to the session that asked for it.
func start(argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command %s: %w", argv[0], err)
	}
	return cmd, nil
}
