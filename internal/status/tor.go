package status

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/whonix/sdwdate-gui/internal/rpc"
)

// TorProbe derives the Tor status from torrc drop-ins and the Tor PID file.
type TorProbe struct {
	// Installed is false when no Tor controller (anon-connection-wizard) is
	// present; the status is then always absent.
	Installed bool
	TorrcDir  string
	PIDPath   string
}

// Status computes the current Tor status.
func (p TorProbe) Status() (rpc.TorStatus, error) {
	if !p.Installed {
		return rpc.TorAbsent, nil
	}

	enabled, err := torEnabled(p.TorrcDir)
	if err != nil {
		return "", err
	}
	_, statErr := os.Stat(p.PIDPath)
	running := statErr == nil

	switch {
	case enabled && running:
		return rpc.TorRunning, nil
	case !enabled && running:
		return rpc.TorDisabledRunning, nil
	case !enabled:
		return rpc.TorDisabled, nil
	default:
		return rpc.TorStopped, nil
	}
}

// torEnabled reports whether the last DisableNetwork directive across the
// sorted *.conf files in dir is 0. No directive means disabled.
func torEnabled(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read torrc dir %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != ".conf" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	value := ""
	for _, name := range names {
		v, err := lastDisableNetwork(filepath.Join(dir, name))
		if err != nil {
			return false, err
		}
		if v != "" {
			value = v
		}
	}
	return value == "0", nil
}

func lastDisableNetwork(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open torrc %q: %w", path, err)
	}
	defer f.Close()

	value := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if strings.EqualFold(fields[0], "DisableNetwork") {
			value = fields[1]
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan torrc %q: %w", path, err)
	}
	return value, nil
}
