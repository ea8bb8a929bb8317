package rpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/whonix/sdwdate-gui/internal/ipc"
)

var ErrNotPrintable = errors.New("report contains non-printable characters")

// SdwdateStatus is the sdwdate state shown by the server.
type SdwdateStatus string

const (
	SdwdateSuccess SdwdateStatus = "success"
	SdwdateBusy    SdwdateStatus = "busy"
	SdwdateError   SdwdateStatus = "error"
)

// ParseSdwdateStatus validates a status keyword.
func ParseSdwdateStatus(s string) (SdwdateStatus, error) {
	switch status := SdwdateStatus(s); status {
	case SdwdateSuccess, SdwdateBusy, SdwdateError:
		return status, nil
	default:
		return "", fmt.Errorf("invalid sdwdate status %q", s)
	}
}

// TorStatus is the Tor state shown by the server.
type TorStatus string

const (
	TorRunning         TorStatus = "running"
	TorStopped         TorStatus = "stopped"
	TorDisabled        TorStatus = "disabled"
	TorDisabledRunning TorStatus = "disabled-running"
	TorAbsent          TorStatus = "absent"
)

func (s TorStatus) valid() bool {
	switch s {
	case TorRunning, TorStopped, TorDisabled, TorDisabledRunning, TorAbsent:
		return true
	}
	return false
}

// Report is a client-to-server RPC call.
type Report interface {
	// Payload renders the frame payload.
	Payload() ([]byte, error)
}

// SetClientName announces the client's display name.
type SetClientName struct {
	Name string
}

func (r SetClientName) Payload() ([]byte, error) {
	if r.Name == "" || strings.Contains(r.Name, " ") {
		return nil, fmt.Errorf("invalid client name %q", r.Name)
	}
	return printable("set_client_name " + r.Name)
}

// SetSdwdateStatus reports the sdwdate state and its human readable message.
type SetSdwdateStatus struct {
	Status  SdwdateStatus
	Message string
}

func (r SetSdwdateStatus) Payload() ([]byte, error) {
	if _, err := ParseSdwdateStatus(string(r.Status)); err != nil {
		return nil, err
	}
	return printable("set_sdwdate_status " + string(r.Status) + " " + EscapeMessage(r.Message))
}

// SetTorStatus reports the Tor state.
type SetTorStatus struct {
	Status TorStatus
}

func (r SetTorStatus) Payload() ([]byte, error) {
	if !r.Status.valid() {
		return nil, fmt.Errorf("invalid tor status %q", r.Status)
	}
	return printable("set_tor_status " + string(r.Status))
}

func printable(s string) ([]byte, error) {
	b := []byte(s)
	if !ipc.Printable(b) {
		return nil, ErrNotPrintable
	}
	return b, nil
}

// EscapeMessage encodes a free-text field as printable ASCII without spaces.
//
// Backslash, space and newline become \134, \040 and \012; the backslash is
// handled first so the introduced escapes are never escaped again. Any other
// byte outside 0x21-0x7E is written as a three digit octal escape as well.
func EscapeMessage(msg string) string {
	var b strings.Builder
	b.Grow(len(msg))
	for i := 0; i < len(msg); i++ {
		c := msg[i]
		switch {
		case c == '\\':
			b.WriteString(`\134`)
		case c == ' ':
			b.WriteString(`\040`)
		case c == '\n':
			b.WriteString(`\012`)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(&b, `\%03o`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// UnescapeMessage reverses EscapeMessage. Malformed escapes are kept verbatim.
func UnescapeMessage(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] <= '3' && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			v := (s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0')
			b.WriteByte(v)
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
