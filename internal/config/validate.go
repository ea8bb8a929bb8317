package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.RunDir) == "" {
		return nil, fmt.Errorf("run dir must not be empty")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be > 0")
	}
	if cfg.ConnectTimeout <= 0 {
		return nil, fmt.Errorf("connect_timeout must be > 0")
	}
	if cfg.WriteTimeout <= 0 {
		return nil, fmt.Errorf("write_timeout must be > 0")
	}
	if cfg.ReconnectBackoff < 0 {
		return nil, fmt.Errorf("reconnect_backoff must be >= 0")
	}

	for _, key := range commandKeys(&cfg) {
		if len(key.target.Argv) == 0 {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("%s is empty; the action is disabled", key.name)})
		}
	}
	if strings.TrimSpace(cfg.SdwdateStatusPath) == "" {
		warnings = append(warnings, Warning{Message: "sdwdate status path is empty; sdwdate status is never reported"})
	}

	return warnings, nil
}
