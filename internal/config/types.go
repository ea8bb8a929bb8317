// Package config resolves, parses, validates, and defaults client configuration.
package config

import (
	"fmt"
	"time"
)

// Config is the fully materialized runtime configuration used by the client.
type Config struct {
	// Disable stops the client before it connects.
	Disable bool

	ConfDir           string
	RunDir            string
	SdwdateStatusPath string
	Tor               TorConfig
	Platform          PlatformConfig
	Actions           ActionsConfig

	PollInterval     time.Duration
	ConnectTimeout   time.Duration
	WriteTimeout     time.Duration
	ReconnectBackoff time.Duration
}

// TorConfig locates the files the Tor status is derived from.
type TorConfig struct {
	RunDir     string
	TorrcDir   string
	PIDPath    string
	WizardPath string
}

// PlatformConfig locates the Qubes markers and the VM name lookup.
type PlatformConfig struct {
	ManagedVMMarker  string
	TemplateVMMarker string
	NameCmd          CommandConfig
	NameTimeout      time.Duration
}

// ActionsConfig holds the commands launched for server requests.
type ActionsConfig struct {
	TorControlPanel CommandConfig
	LogViewer       CommandConfig
	RestartSdwdate  CommandConfig
	StopSdwdate     CommandConfig
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.File == "" {
		return w.Message
	}
	if w.Line == 0 {
		return w.File + ": " + w.Message
	}
	return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
}
