// Package doctor runs runtime readiness diagnostics for privileges, platform,
// config, server socket, status sources, and action commands.
package doctor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/whonix/sdwdate-gui/internal/config"
	"github.com/whonix/sdwdate-gui/internal/env"
	"github.com/whonix/sdwdate-gui/internal/session"
	"github.com/whonix/sdwdate-gui/internal/status"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(loaded config.Loaded) Report {
	return run(loaded, env.Privileged())
}

func run(loaded config.Loaded, privileged bool) Report {
	cfg := loaded.Config
	probe := env.NewProbe(cfg.Platform)
	checks := []Check{}

	checks = append(checks, checkPrivilege(privileged))
	checks = append(checks, checkTemplateVM(probe))

	managed := probe.ManagedVM()
	handshake := session.SelectHandshake(managed, probe.ServerMarker(cfg.ServerPIDPath()))
	platform := "standalone host"
	if managed {
		platform = "Qubes VM"
	}
	checks = append(checks, Check{
		Name:    "platform",
		Pass:    true,
		Message: fmt.Sprintf("%s; handshake %s", platform, handshake),
	})

	checks = append(checks, checkConfig(loaded))
	checks = append(checks, checkSocket(cfg.SocketPath()))

	monitorCfg := status.FromConfig(cfg)
	checks = append(checks, checkSdwdateStatus(monitorCfg.SdwdateStatusPath))
	checks = append(checks, checkTorStatus(monitorCfg.Tor))

	checks = append(checks, checkCommand(cfg.Actions.TorControlPanel.Argv, "tor_control_panel_cmd"))
	checks = append(checks, checkCommand(cfg.Actions.LogViewer.Argv, "log_viewer_cmd"))
	checks = append(checks, checkCommand(cfg.Actions.RestartSdwdate.Argv, "restart_sdwdate_cmd"))
	checks = append(checks, checkCommand(cfg.Actions.StopSdwdate.Argv, "stop_sdwdate_cmd"))

	return Report{Checks: checks}
}

func checkPrivilege(privileged bool) Check {
	if privileged {
		return Check{Name: "privilege", Pass: false, Message: "running as root; the client must run as the desktop user"}
	}
	return Check{Name: "privilege", Pass: true, Message: "running unprivileged"}
}

func checkTemplateVM(probe env.Probe) Check {
	if probe.TemplateVM() {
		return Check{Name: "template_vm", Pass: false, Message: "TemplateVM marker present; the client refuses to run"}
	}
	return Check{Name: "template_vm", Pass: true, Message: "not a TemplateVM"}
}

func checkConfig(loaded config.Loaded) Check {
	if loaded.Config.Disable {
		return Check{Name: "config", Pass: false, Message: fmt.Sprintf("client disabled by %q", loaded.Dir)}
	}
	message := fmt.Sprintf("loaded %d file(s) from %q", len(loaded.Files), loaded.Dir)
	if len(loaded.Warnings) > 0 {
		message = fmt.Sprintf("%s (%d warning(s))", message, len(loaded.Warnings))
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkSocket reports whether the server has published its socket.
func checkSocket(path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{Name: "server.socket", Pass: false, Message: fmt.Sprintf("not available at %s", path)}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Check{Name: "server.socket", Pass: false, Message: fmt.Sprintf("%s is not a socket", path)}
	}
	return Check{Name: "server.socket", Pass: true, Message: fmt.Sprintf("present at %s", path)}
}

func checkSdwdateStatus(path string) Check {
	report, err := status.ReadSdwdate(path)
	if err != nil {
		if errors.Is(err, status.ErrNoStatus) {
			return Check{Name: "sdwdate.status", Pass: false, Message: fmt.Sprintf("no status file at %s", path)}
		}
		return Check{Name: "sdwdate.status", Pass: false, Message: err.Error()}
	}
	return Check{Name: "sdwdate.status", Pass: true, Message: string(report.Status)}
}

func checkTorStatus(probe status.TorProbe) Check {
	torStatus, err := probe.Status()
	if err != nil {
		return Check{Name: "tor.status", Pass: false, Message: err.Error()}
	}
	return Check{Name: "tor.status", Pass: true, Message: string(torStatus)}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}
