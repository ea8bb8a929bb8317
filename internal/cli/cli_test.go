package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToRun(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.False(t, parsed.ShowHelp)
	require.Equal(t, CommandRun, parsed.Command)
	require.Empty(t, parsed.ConfigDir)
	require.False(t, parsed.LogFile)
	require.False(t, parsed.Debug)
}

func TestParseCommandWithConfigDir(t *testing.T) {
	parsed, err := Parse([]string{"--config-dir", "/tmp/sdwdate-gui.d", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/sdwdate-gui.d", parsed.ConfigDir)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
		wantDir  string
		wantKey  string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help command",
			args:     []string{"help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "version command",
			args:    []string{"version"},
			wantCmd: CommandVersion,
		},
		{
			name:    "config dir after command",
			args:    []string{"doctor", "--config-dir", "/tmp/cfg"},
			wantCmd: CommandDoctor,
			wantDir: "/tmp/cfg",
		},
		{
			name:    "config read",
			args:    []string{"config-read", "disable"},
			wantCmd: CommandConfigRead,
			wantKey: "disable",
		},
		{
			name:    "config read without key",
			args:    []string{"config-read"},
			wantErr: "accepts 1 arg(s)",
		},
		{
			name:    "config read with two keys",
			args:    []string{"config-read", "a", "b"},
			wantErr: "accepts 1 arg(s)",
		},
		{
			name:    "missing config dir",
			args:    []string{"--config-dir"},
			wantErr: "flag needs an argument",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"toggle"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after doctor",
			args:    []string{"doctor", "now"},
			wantErr: "unknown command",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantDir, parsed.ConfigDir)
			require.Equal(t, tc.wantKey, parsed.Key)
			if tc.wantHelp {
				require.Contains(t, parsed.Help, "Usage:")
			}
		})
	}
}

func TestParseLoggingFlags(t *testing.T) {
	parsed, err := Parse([]string{"--log-file", "--debug"})
	require.NoError(t, err)
	require.Equal(t, CommandRun, parsed.Command)
	require.True(t, parsed.LogFile)
	require.True(t, parsed.Debug)
}

func TestHelpTextMentionsCommandsAndFlags(t *testing.T) {
	help := HelpText()
	require.Contains(t, help, BinaryName)
	require.Contains(t, help, "doctor")
	require.Contains(t, help, "config-read")
	require.Contains(t, help, "--config-dir")
	require.Contains(t, help, "--log-file")
}
