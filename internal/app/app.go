package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/whonix/sdwdate-gui/internal/actions"
	"github.com/whonix/sdwdate-gui/internal/cli"
	"github.com/whonix/sdwdate-gui/internal/config"
	"github.com/whonix/sdwdate-gui/internal/doctor"
	"github.com/whonix/sdwdate-gui/internal/env"
	"github.com/whonix/sdwdate-gui/internal/logging"
	"github.com/whonix/sdwdate-gui/internal/reconnect"
	"github.com/whonix/sdwdate-gui/internal/rpc"
	"github.com/whonix/sdwdate-gui/internal/session"
	"github.com/whonix/sdwdate-gui/internal/status"
	"github.com/whonix/sdwdate-gui/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Privileged reports whether the process runs as root; nil uses env.Privileged.
	Privileged func() bool
	// Override adjusts the runtime config after defaults and drop-ins apply.
	Override func(*config.Config)
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// ExitCodeForSignal returns the conventional exit status of a process
// terminated by sig.
func ExitCodeForSignal(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText())
		return 2
	}

	switch parsed.Command {
	case cli.CommandHelp:
		fmt.Fprint(r.Stdout, parsed.Help)
		return 0
	case cli.CommandVersion:
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	case cli.CommandConfigRead:
		return r.commandConfigRead(parsed)
	case cli.CommandDoctor:
		return r.commandDoctor(parsed)
	case cli.CommandRun:
		return r.commandRun(ctx, parsed)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) loadConfig(dir string) (config.Loaded, error) {
	loaded, err := config.Load(dir)
	if err != nil {
		return config.Loaded{}, err
	}
	if r.Override != nil {
		r.Override(&loaded.Config)
	}
	return loaded, nil
}

func (r Runner) commandConfigRead(parsed cli.Parsed) int {
	loaded, err := r.loadConfig(parsed.ConfigDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	value, ok := loaded.Config.Value(parsed.Key)
	if !ok {
		fmt.Fprintf(r.Stderr, "error: unknown config key %q\n", parsed.Key)
		return 1
	}
	fmt.Fprintln(r.Stdout, value)
	return 0
}

func (r Runner) commandDoctor(parsed cli.Parsed) int {
	loaded, err := r.loadConfig(parsed.ConfigDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	report := doctor.Run(loaded)
	fmt.Fprintln(r.Stdout, report.String())
	if report.OK() {
		return 0
	}
	return 1
}

func (r Runner) privileged() bool {
	if r.Privileged != nil {
		return r.Privileged()
	}
	return env.Privileged()
}

func (r Runner) commandRun(ctx context.Context, parsed cli.Parsed) int {
	// Both refusals go to stdout, before logging exists.
	if r.privileged() {
		fmt.Fprintln(r.Stdout, "ERROR: Do not run with sudo / as root!")
		return 1
	}

	base := config.Default()
	if r.Override != nil {
		r.Override(&base)
	}
	if env.NewProbe(base.Platform).TemplateVM() {
		fmt.Fprintln(r.Stdout, "INFO: Refusing to run in a QubesOS TemplateVM.")
		return 1
	}

	logRuntime, err := logging.New(logging.Options{File: parsed.LogFile, Debug: parsed.Debug, Stderr: r.Stderr})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	loaded, err := r.loadConfig(parsed.ConfigDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range loaded.Warnings {
		logger.Warn("config warning", "file", w.File, "line", w.Line, "message", w.Message)
	}
	if loaded.Config.Disable {
		logger.Info("client disabled by config", "dir", loaded.Dir)
		return 0
	}

	logger.Info("client start",
		"build", version.Current(),
		"config_dir", loaded.Dir,
		"socket", loaded.Config.SocketPath(),
		"log", logRuntime.Path,
	)

	if err := runClient(ctx, loaded.Config, logger); err != nil {
		if ctx.Err() != nil {
			logger.Info("client stopped", "reason", ctx.Err().Error())
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("client failed", "error", err.Error())
		return 1
	}
	logger.Info("client exit")
	return 0
}

// runClient supervises the status monitor and the reconnect controller until
// the controller decides to exit or ctx ends.
func runClient(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	probe := env.NewProbe(cfg.Platform)
	monitor := status.NewMonitor(status.FromConfig(cfg), logger)
	launcher := actions.NewLauncher(cfg.Actions, logger)

	var controller *reconnect.Controller
	factory := func(ctx context.Context) reconnect.Runner {
		handshake := session.SelectHandshake(probe.ManagedVM(), probe.ServerMarker(cfg.ServerPIDPath()))
		dispatcher := rpc.NewDispatcher(launcher, controller.Suppress, logger)
		return session.New(session.Config{
			SocketPath:     cfg.SocketPath(),
			PollInterval:   cfg.PollInterval,
			ConnectTimeout: cfg.ConnectTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			Handshake:      handshake,
			ClientName:     probe.DisplayName,
		}, dispatcher, monitor, logger)
	}
	controller = reconnect.New(probe.ManagedVM(), cfg.ReconnectBackoff, factory, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return controller.Run(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return nil
	}
	return err
}
