package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrEmptyCommand    = errors.New("command must not be empty")
	ErrShellOperator   = errors.New("shell operator in command")
	ErrRelativeProgram = errors.New("program must be an absolute path or a bare name looked up in PATH")
)

// shellOperators only mean something to a shell. Action commands are
// executed directly, so an unquoted operator would be passed through as a
// literal argument instead of doing what the drop-in author expected.
const shellOperators = "|&;<>()$`"

// ParseCommand splits an action command line into argv. Whitespace separates
// arguments; single quotes are literal, double quotes allow \" and \\, and a
// backslash outside quotes escapes the next character.
func ParseCommand(raw string) (CommandConfig, error) {
	argv, err := splitCommand(raw)
	if err != nil {
		return CommandConfig{}, err
	}
	if len(argv) == 0 {
		return CommandConfig{}, ErrEmptyCommand
	}

	program := argv[0]
	if strings.ContainsRune(program, '/') && !filepath.IsAbs(program) {
		return CommandConfig{}, fmt.Errorf("%w: %q", ErrRelativeProgram, program)
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}

func splitCommand(raw string) ([]string, error) {
	var (
		argv  []string
		word  strings.Builder
		inArg bool
		quote rune
	)
	runes := []rune(strings.TrimSpace(raw))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch quote {
		case '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
			continue
		case '"':
			switch {
			case r == '"':
				quote = 0
			case r == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\'):
				i++
				word.WriteRune(runes[i])
			default:
				word.WriteRune(r)
			}
			continue
		}

		switch {
		case unicode.IsSpace(r):
			if inArg {
				argv = append(argv, word.String())
				word.Reset()
				inArg = false
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == '\\':
			if i+1 == len(runes) {
				return nil, fmt.Errorf("unterminated escape at end of %q", raw)
			}
			i++
			word.WriteRune(runes[i])
			inArg = true
		case strings.ContainsRune(shellOperators, r):
			return nil, fmt.Errorf("%w: %q in %q; quote it or wrap the pipeline in a script", ErrShellOperator, r, raw)
		default:
			word.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", raw)
	}
	if inArg {
		argv = append(argv, word.String())
	}
	return argv, nil
}

// mustParseCommand is for built-in defaults only.
func mustParseCommand(raw string) CommandConfig {
	cmd, err := ParseCommand(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in command %q: %v", raw, err))
	}
	return cmd
}
