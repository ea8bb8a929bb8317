// Package env probes the execution environment the client runs in.
package env

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/whonix/sdwdate-gui/internal/config"
)

// Probe answers environment questions from well-known marker files.
type Probe struct {
	ManagedVMMarker  string
	TemplateVMMarker string
	// NameCommand prints this VM's name on the managed platform.
	NameCommand []string
	NameTimeout time.Duration
}

// NewProbe builds a probe from the platform section of the runtime config.
func NewProbe(cfg config.PlatformConfig) Probe {
	return Probe{
		ManagedVMMarker:  cfg.ManagedVMMarker,
		TemplateVMMarker: cfg.TemplateVMMarker,
		NameCommand:      cfg.NameCmd.Argv,
		NameTimeout:      cfg.NameTimeout,
	}
}

// ManagedVM reports whether the client runs inside a managed (Qubes) VM,
// where connections are brokered by qrexec.
func (p Probe) ManagedVM() bool {
	return isFile(p.ManagedVMMarker)
}

// TemplateVM reports whether the client runs inside a template VM.
func (p Probe) TemplateVM() bool {
	return isFile(p.TemplateVMMarker)
}

// ServerMarker reports whether a locally started server left its PID file.
func (p Probe) ServerMarker(path string) bool {
	return isFile(path)
}

// DisplayName resolves the name announced to the server. In the managed VM
// the platform's VM name is preferred; the host name is the fallback.
func (p Probe) DisplayName(ctx context.Context) string {
	if p.ManagedVM() && len(p.NameCommand) > 0 {
		if name := p.platformName(ctx); name != "" {
			return name
		}
	}
	return Hostname()
}

func (p Probe) platformName(ctx context.Context) string {
	timeout := p.NameTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, p.NameCommand[0], p.NameCommand[1:]...).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Hostname returns the kernel node name.
func Hostname() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		name, _ := os.Hostname()
		return name
	}
	return unix.ByteSliceToString(uts.Nodename[:])
}

// Privileged reports whether the process runs with root privileges.
func Privileged() bool {
	return unix.Geteuid() == 0
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
