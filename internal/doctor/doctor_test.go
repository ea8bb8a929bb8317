package doctor

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/whonix/sdwdate-gui/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "stop_sdwdate_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "leaprun")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"leaprun", "stop-sdwdate"}, "stop_sdwdate_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "stop_sdwdate_cmd command is available")
}

func TestCheckSocket(t *testing.T) {
	dir := t.TempDir()

	check := checkSocket(filepath.Join(dir, "missing.socket"))
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "not available")

	regular := filepath.Join(dir, "regular")
	require.NoError(t, os.WriteFile(regular, nil, 0o600))
	check = checkSocket(regular)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "is not a socket")

	path := filepath.Join(dir, "s.socket")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	check = checkSocket(path)
	require.True(t, check.Pass)
}

func TestCheckSdwdateStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status")

	check := checkSdwdateStatus(path)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no status file")

	require.NoError(t, os.WriteFile(path, []byte(`{"icon": "busy", "message": "Running"}`), 0o644))
	check = checkSdwdateStatus(path)
	require.True(t, check.Pass)
	require.Equal(t, "busy", check.Message)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.RunDir = filepath.Join(dir, "run")
	cfg.SdwdateStatusPath = filepath.Join(dir, "sdwdate-status")
	cfg.Tor.WizardPath = filepath.Join(dir, "anon-connection-wizard")
	cfg.Platform.ManagedVMMarker = filepath.Join(dir, "marker-vm")
	cfg.Platform.TemplateVMMarker = filepath.Join(dir, "this-is-templatevm")
	return cfg
}

func findCheck(t *testing.T, report Report, name string) Check {
	t.Helper()
	for _, check := range report.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %q not in report", name)
	return Check{}
}

func TestRunReportsEnvironment(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Platform.TemplateVMMarker, nil, 0o644))

	report := run(config.Loaded{Dir: "/etc/sdwdate-gui.d", Config: cfg}, true)
	require.False(t, report.OK())

	require.False(t, findCheck(t, report, "privilege").Pass)
	require.False(t, findCheck(t, report, "template_vm").Pass)
	require.Equal(t, "standalone host; handshake self-identify", findCheck(t, report, "platform").Message)
	require.Equal(t, "absent", findCheck(t, report, "tor.status").Message)
	require.False(t, findCheck(t, report, "server.socket").Pass)
	require.Contains(t, findCheck(t, report, "config").Message, `"/etc/sdwdate-gui.d"`)
}

func TestRunManagedVMWithoutServerMarkerIsSupervised(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Platform.ManagedVMMarker, nil, 0o644))

	report := run(config.Loaded{Config: cfg}, false)
	require.True(t, findCheck(t, report, "privilege").Pass)
	require.True(t, findCheck(t, report, "template_vm").Pass)
	require.Equal(t, "Qubes VM; handshake supervised", findCheck(t, report, "platform").Message)
}

func TestRunFlagsDisabledConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Disable = true

	report := run(config.Loaded{Dir: "/etc/sdwdate-gui.d", Config: cfg}, false)
	check := findCheck(t, report, "config")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "disabled")
}
