package config

import (
	"strconv"
	"strings"
)

type valueKey struct {
	name string
	get  func(Config) string
}

var valueKeys = []valueKey{
	{"disable", func(c Config) string { return strconv.FormatBool(c.Disable) }},
	{"conf_dir", func(c Config) string { return c.ConfDir }},
	{"run_dir", func(c Config) string { return c.RunDir }},
	{"socket_path", func(c Config) string { return c.SocketPath() }},
	{"server_pid_path", func(c Config) string { return c.ServerPIDPath() }},
	{"sdwdate_status_path", func(c Config) string { return c.SdwdateStatusPath }},
	{"tor_run_dir", func(c Config) string { return c.Tor.RunDir }},
	{"torrc_dir", func(c Config) string { return c.Tor.TorrcDir }},
	{"tor_pid_path", func(c Config) string { return c.Tor.PIDPath }},
	{"managed_vm_marker", func(c Config) string { return c.Platform.ManagedVMMarker }},
	{"template_vm_marker", func(c Config) string { return c.Platform.TemplateVMMarker }},
	{"tor_control_panel_cmd", func(c Config) string { return argvString(c.Actions.TorControlPanel) }},
	{"log_viewer_cmd", func(c Config) string { return argvString(c.Actions.LogViewer) }},
	{"restart_sdwdate_cmd", func(c Config) string { return argvString(c.Actions.RestartSdwdate) }},
	{"stop_sdwdate_cmd", func(c Config) string { return argvString(c.Actions.StopSdwdate) }},
	{"poll_interval", func(c Config) string { return c.PollInterval.String() }},
	{"connect_timeout", func(c Config) string { return c.ConnectTimeout.String() }},
	{"write_timeout", func(c Config) string { return c.WriteTimeout.String() }},
	{"reconnect_backoff", func(c Config) string { return c.ReconnectBackoff.String() }},
}

// Value returns the effective value of key, formatted for display.
func (c Config) Value(key string) (string, bool) {
	for _, k := range valueKeys {
		if k.name == key {
			return k.get(c), true
		}
	}
	return "", false
}

// Keys lists every key Value understands.
func Keys() []string {
	keys := make([]string, 0, len(valueKeys))
	for _, k := range valueKeys {
		keys = append(keys, k.name)
	}
	return keys
}

func argvString(cmd CommandConfig) string {
	if cmd.Raw != "" {
		return cmd.Raw
	}
	return strings.Join(cmd.Argv, " ")
}
