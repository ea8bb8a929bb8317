package config

import (
	"strings"
	"testing"
)

func TestParseDisableFalseKeepsDefaults(t *testing.T) {
	input := `
# disable=true
disable=false
`

	cfg, warnings, err := Parse(input, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Disable {
		t.Fatal("expected client to stay enabled")
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseDisableTrueStopsParsing(t *testing.T) {
	input := "disable=true\nthis line is never reached\n"

	cfg, _, err := Parse(input, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.Disable {
		t.Fatal("expected client to be disabled")
	}
}

func TestParseDisableRejectsOtherValues(t *testing.T) {
	for _, value := range []string{"yes", "1", "True", " true", ""} {
		_, _, err := Parse("disable="+value, Default())
		if err == nil {
			t.Fatalf("expected error for disable=%q", value)
		}
		if !strings.Contains(err.Error(), "invalid value") {
			t.Fatalf("unexpected error for disable=%q: %v", value, err)
		}
	}
}

func TestParseLineWithHashAnywhereIsSkipped(t *testing.T) {
	cfg, _, err := Parse("disable=true # trailing comment\nno equals sign # here\n", Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Disable {
		t.Fatal("commented line must not disable the client")
	}
}

func TestParseLineNumberOnError(t *testing.T) {
	_, _, err := Parse("\n\nthis is bad", Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in error, got %v", err)
	}
}

func TestParseUnknownKeyWarns(t *testing.T) {
	cfg, warnings, err := Parse("foo=bar\ndisable =true\n", Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Disable {
		t.Fatal("key with trailing space is not the disable key")
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if warnings[0].Line != 1 || !strings.Contains(warnings[0].Message, `"foo"`) {
		t.Fatalf("unexpected first warning: %+v", warnings[0])
	}
	if warnings[1].Line != 2 {
		t.Fatalf("unexpected second warning: %+v", warnings[1])
	}
}

func TestParseCommandArgvQuoted(t *testing.T) {
	cfg, _, err := Parse(`log_viewer_cmd=xterm -e "journalctl -u sdwdate"`, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := strings.Join(cfg.Actions.LogViewer.Argv, "|")
	want := "xterm|-e|journalctl -u sdwdate"
	if got != want {
		t.Fatalf("unexpected argv parse: got %q want %q", got, want)
	}
	if cfg.Actions.LogViewer.Raw != `xterm -e "journalctl -u sdwdate"` {
		t.Fatalf("unexpected raw command: %q", cfg.Actions.LogViewer.Raw)
	}
}

func TestParseCommandRejectsEmptyAndUnterminated(t *testing.T) {
	_, _, err := Parse("stop_sdwdate_cmd=", Default())
	if err == nil || !strings.Contains(err.Error(), "must not be empty") {
		t.Fatalf("expected empty command error, got %v", err)
	}

	_, _, err = Parse(`restart_sdwdate_cmd=leaprun "oops`, Default())
	if err == nil || !strings.Contains(err.Error(), "unterminated quote") {
		t.Fatalf("expected unterminated quote error, got %v", err)
	}
}
