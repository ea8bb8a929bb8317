package status

import (
	"os"

	"github.com/whonix/sdwdate-gui/internal/config"
)

// FromConfig derives the monitor configuration from the runtime config.
// Tor is considered installed when its controller binary exists.
func FromConfig(cfg config.Config) Config {
	_, err := os.Stat(cfg.Tor.WizardPath)
	return Config{
		SdwdateStatusPath: cfg.SdwdateStatusPath,
		Tor: TorProbe{
			Installed: cfg.Tor.WizardPath != "" && err == nil,
			TorrcDir:  cfg.Tor.TorrcDir,
			PIDPath:   cfg.Tor.PIDPath,
		},
		TorWatchDirs: []string{cfg.Tor.RunDir, cfg.Tor.TorrcDir},
	}
}
