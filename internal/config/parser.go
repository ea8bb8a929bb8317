package config

import (
	"fmt"
	"strings"
)

// Parse applies one drop-in file's key=value lines on top of base.
//
// Any line containing `#` is a comment. Parsing stops at the first
// `disable=true`; the returned config then has Disable set.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg := base
	var warnings []Warning

	lines := strings.Split(content, "\n")
	for idx, rawLine := range lines {
		lineNo := idx + 1
		if strings.Contains(rawLine, "#") {
			continue
		}
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, warnings, fmt.Errorf("line %d: expected key=value", lineNo)
		}

		switch key {
		case "disable":
			switch value {
			case "true":
				cfg.Disable = true
				return cfg, warnings, nil
			case "false":
				cfg.Disable = false
			default:
				return Config{}, warnings, fmt.Errorf("line %d: invalid value %q for disable (want true or false)", lineNo, value)
			}
		default:
			target := lookupCommand(&cfg, key)
			if target == nil {
				warnings = append(warnings, Warning{Line: lineNo, Message: fmt.Sprintf("ignoring unknown key %q", key)})
				continue
			}
			cmd, err := ParseCommand(value)
			if err != nil {
				return Config{}, warnings, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
			}
			*target = cmd
		}
	}

	return cfg, warnings, nil
}

type commandKey struct {
	name   string
	target *CommandConfig
}

// commandKeys lists the command keys drop-ins may override, bound to cfg.
func commandKeys(cfg *Config) []commandKey {
	return []commandKey{
		{name: "tor_control_panel_cmd", target: &cfg.Actions.TorControlPanel},
		{name: "log_viewer_cmd", target: &cfg.Actions.LogViewer},
		{name: "restart_sdwdate_cmd", target: &cfg.Actions.RestartSdwdate},
		{name: "stop_sdwdate_cmd", target: &cfg.Actions.StopSdwdate},
	}
}

func lookupCommand(cfg *Config, key string) *CommandConfig {
	for _, k := range commandKeys(cfg) {
		if k.name == key {
			return k.target
		}
	}
	return nil
}
