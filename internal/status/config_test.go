package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whonix/sdwdate-gui/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Tor.WizardPath = filepath.Join(t.TempDir(), "anon-connection-wizard")

	got := FromConfig(cfg)
	require.Equal(t, "/run/sdwdate/status", got.SdwdateStatusPath)
	require.False(t, got.Tor.Installed)
	require.Equal(t, []string{"/run/tor", "/usr/local/etc/torrc.d"}, got.TorWatchDirs)

	require.NoError(t, os.WriteFile(cfg.Tor.WizardPath, []byte("#!/bin/sh\n"), 0o755))
	got = FromConfig(cfg)
	require.True(t, got.Tor.Installed)
	require.Equal(t, "/run/tor/tor.pid", got.Tor.PIDPath)
}
