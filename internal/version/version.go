// Package version reports the client build, for the version command and the
// start-up log line.
package version

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X" by release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string
	Commit    string
	Date      string
	Modified  bool
	GoVersion string
}

var readBuildInfo = debug.ReadBuildInfo

// Current resolves build metadata. Values not injected by the linker fall back
// to the VCS stamp the go tool embeds in the binary.
func Current() Build {
	b := Build{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}

	info, ok := readBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

func (b Build) String() string {
	commit := b.Commit
	if b.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("sdwdate-gui-client %s (commit=%s, date=%s, go=%s)", b.Version, commit, b.Date, b.GoVersion)
}

// LogValue groups the metadata under one key in structured logs.
func (b Build) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", b.Version),
		slog.String("commit", b.Commit),
		slog.Bool("modified", b.Modified),
		slog.String("go", b.GoVersion),
	)
}

// String is the line printed by the version command.
func String() string {
	return Current().String()
}
