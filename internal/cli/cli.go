// Package cli defines the client's command line surface.
package cli

import (
	"bytes"
	"io"

	"github.com/spf13/cobra"
)

// BinaryName is the installed name of the client executable.
const BinaryName = "sdwdate-gui-client"

type Command string

const (
	CommandRun        Command = "run"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandConfigRead Command = "config-read"
	CommandHelp       Command = "help"
)

type Parsed struct {
	Command   Command
	ConfigDir string
	LogFile   bool
	Debug     bool
	// Key is the config-read argument.
	Key      string
	ShowHelp bool
	// Help is the rendered help text when ShowHelp is set.
	Help string
}

// Parse maps args onto a command without executing anything.
func Parse(args []string) (Parsed, error) {
	var parsed Parsed
	root := newRootCommand(&parsed)

	var help bytes.Buffer
	root.SetOut(&help)
	root.SetErr(io.Discard)
	if args == nil {
		// cobra falls back to os.Args for nil args.
		args = []string{}
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return Parsed{}, err
	}
	if parsed.Command == "" {
		parsed.Command = CommandHelp
		parsed.ShowHelp = true
		parsed.Help = help.String()
	}
	return parsed, nil
}

// HelpText renders the root command's usage.
func HelpText() string {
	var parsed Parsed
	return newRootCommand(&parsed).UsageString()
}

func newRootCommand(parsed *Parsed) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   BinaryName,
		Short: "Report sdwdate and Tor status to the sdwdate-gui server",
		Long: `sdwdate-gui-client connects to the sdwdate-gui server socket, reports
sdwdate and Tor status, and runs the actions the server requests.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed.Command = CommandRun
			if showVersion {
				parsed.Command = CommandVersion
			}
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&parsed.ConfigDir, "config-dir", "", "drop-in config directory (default /etc/sdwdate-gui.d)")
	flags.BoolVar(&parsed.LogFile, "log-file", false, "log JSON lines to $XDG_STATE_HOME/sdwdate-gui/client.log.jsonl instead of stderr")
	flags.BoolVar(&parsed.Debug, "debug", false, "enable debug logging")
	root.Flags().BoolVar(&showVersion, "version", false, "show version")

	// Subcommands (alphabetical)
	root.AddCommand(&cobra.Command{
		Use:   "config-read KEY",
		Short: "Print the effective value of a config key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed.Command = CommandConfigRead
			parsed.Key = args[0]
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Run configuration and environment checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed.Command = CommandDoctor
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed.Command = CommandVersion
			return nil
		},
	})

	return root
}
