// Package rpc implements the text RPC calls carried inside protocol frames:
// server-to-client commands and client-to-server status reports.
package rpc

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/whonix/sdwdate-gui/internal/ipc"
)

// ErrProtocolViolation marks input that must terminate the connection.
var ErrProtocolViolation = errors.New("protocol violation")

// Command is a server-to-client RPC name.
type Command string

const (
	CommandOpenTorControlPanel     Command = "open_tor_control_panel"
	CommandOpenSdwdateLog          Command = "open_sdwdate_log"
	CommandRestartSdwdate          Command = "restart_sdwdate"
	CommandStopSdwdate             Command = "stop_sdwdate"
	CommandSuppressClientReconnect Command = "suppress_client_reconnect"
)

var knownCommands = map[Command]struct{}{
	CommandOpenTorControlPanel:     {},
	CommandOpenSdwdateLog:          {},
	CommandRestartSdwdate:          {},
	CommandStopSdwdate:             {},
	CommandSuppressClientReconnect: {},
}

// Known reports whether c is part of the command table.
func (c Command) Known() bool {
	_, ok := knownCommands[c]
	return ok
}

// Actions are the local side effects a server may trigger. Implementations
// must not block the caller.
type Actions interface {
	OpenTorControlPanel()
	OpenSdwdateLog()
	RestartSdwdate()
	StopSdwdate()
}

// ParseCommand validates a frame payload and splits it into a command name
// and the argument section. hasArgs is true when a space separator is present,
// even if nothing follows it.
func ParseCommand(payload []byte) (cmd Command, args string, hasArgs bool, err error) {
	if !ipc.Printable(payload) {
		return "", "", false, fmt.Errorf("%w: non-printable byte in payload", ErrProtocolViolation)
	}

	name, rest, found := strings.Cut(string(payload), " ")
	return Command(name), rest, found, nil
}

// Dispatcher maps decoded frames onto local actions.
type Dispatcher struct {
	actions  Actions
	suppress func()
	logger   *slog.Logger
}

// NewDispatcher wires actions and the reconnect-suppression hook.
func NewDispatcher(actions Actions, suppress func(), logger *slog.Logger) *Dispatcher {
	if actions == nil {
		actions = noopActions{}
	}
	if suppress == nil {
		suppress = func() {}
	}
	return &Dispatcher{actions: actions, suppress: suppress, logger: logger}
}

// Dispatch runs the command in payload. Errors wrap ErrProtocolViolation and
// mean the server must be kicked; unknown commands are dropped.
func (d *Dispatcher) Dispatch(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	cmd, args, hasArgs, err := ParseCommand(payload)
	if err != nil {
		return err
	}

	if !cmd.Known() {
		d.debug("ignoring unknown command", "command", string(cmd))
		return nil
	}
	if hasArgs {
		return fmt.Errorf("%w: %s takes no arguments, got %q", ErrProtocolViolation, cmd, args)
	}

	d.debug("dispatching command", "command", string(cmd))
	switch cmd {
	case CommandOpenTorControlPanel:
		d.actions.OpenTorControlPanel()
	case CommandOpenSdwdateLog:
		d.actions.OpenSdwdateLog()
	case CommandRestartSdwdate:
		d.actions.RestartSdwdate()
	case CommandStopSdwdate:
		d.actions.StopSdwdate()
	case CommandSuppressClientReconnect:
		d.suppress()
	}
	return nil
}

func (d *Dispatcher) debug(msg string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.Debug(msg, args...)
}

type noopActions struct{}

func (noopActions) OpenTorControlPanel() {}
func (noopActions) OpenSdwdateLog()      {}
func (noopActions) RestartSdwdate()      {}
func (noopActions) StopSdwdate()         {}
