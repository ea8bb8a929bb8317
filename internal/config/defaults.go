package config

import (
	"os"
	"time"

	"github.com/whonix/sdwdate-gui/internal/ipc"
)

// DefaultConfDir holds the drop-in configuration files.
const DefaultConfDir = "/etc/sdwdate-gui.d"

// Default returns the canonical runtime configuration used before drop-ins apply.
func Default() Config {
	return Config{
		ConfDir:           DefaultConfDir,
		RunDir:            ipc.RuntimeDir(os.Getuid()),
		SdwdateStatusPath: "/run/sdwdate/status",
		Tor: TorConfig{
			RunDir:     "/run/tor",
			TorrcDir:   "/usr/local/etc/torrc.d",
			PIDPath:    "/run/tor/tor.pid",
			WizardPath: "/usr/bin/anon-connection-wizard",
		},
		Platform: PlatformConfig{
			ManagedVMMarker:  "/usr/share/qubes/marker-vm",
			TemplateVMMarker: "/run/qubes/this-is-templatevm",
			NameCmd:          mustParseCommand("qubesdb-read /name"),
			NameTimeout:      2 * time.Second,
		},
		Actions: ActionsConfig{
			TorControlPanel: mustParseCommand("tor-control-panel"),
			LogViewer:       mustParseCommand("/usr/libexec/sdwdate-gui/log-viewer"),
			RestartSdwdate:  mustParseCommand("leaprun sdwdate-clock-jump"),
			StopSdwdate:     mustParseCommand("leaprun stop-sdwdate"),
		},
		PollInterval:     100 * time.Millisecond,
		ConnectTimeout:   5 * time.Second,
		WriteTimeout:     2 * time.Second,
		ReconnectBackoff: time.Second,
	}
}

// SocketPath returns the server socket inside the run dir.
func (c Config) SocketPath() string {
	return ipc.SocketPath(c.RunDir)
}

// ServerPIDPath returns the marker a locally started server leaves in the run dir.
func (c Config) ServerPIDPath() string {
	return ipc.ServerPIDPath(c.RunDir)
}
