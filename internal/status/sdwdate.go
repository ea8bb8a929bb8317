// Package status derives sdwdate and Tor status reports from local state and
// emits a fresh report whenever the underlying files change.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/whonix/sdwdate-gui/internal/rpc"
)

// ErrNoStatus means the status file does not exist yet.
var ErrNoStatus = errors.New("status file not present")

type sdwdateFile struct {
	Icon    *string `json:"icon"`
	Message *string `json:"message"`
}

// ReadSdwdate parses the JSON status file sdwdate maintains.
func ReadSdwdate(path string) (rpc.SetSdwdateStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rpc.SetSdwdateStatus{}, ErrNoStatus
		}
		return rpc.SetSdwdateStatus{}, fmt.Errorf("read sdwdate status %q: %w", path, err)
	}

	var parsed sdwdateFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return rpc.SetSdwdateStatus{}, fmt.Errorf("parse sdwdate status %q: %w", path, err)
	}
	if parsed.Icon == nil || parsed.Message == nil {
		return rpc.SetSdwdateStatus{}, fmt.Errorf("sdwdate status %q: missing icon or message", path)
	}

	status, err := rpc.ParseSdwdateStatus(*parsed.Icon)
	if err != nil {
		return rpc.SetSdwdateStatus{}, fmt.Errorf("sdwdate status %q: %w", path, err)
	}
	return rpc.SetSdwdateStatus{Status: status, Message: *parsed.Message}, nil
}
