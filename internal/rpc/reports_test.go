package rpc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeMessageExample(t *testing.T) {
	require.Equal(t, `a\040b\012c\134d`, EscapeMessage("a b\nc\\d"))
}

func TestEscapeMatchesOrderedReplacement(t *testing.T) {
	msgs := []string{
		"",
		"plain",
		`\040 literal`,
		"trailing\\",
		"multi\n\nline  text",
		`\\\ \n`,
	}

	for _, msg := range msgs {
		ordered := strings.ReplaceAll(msg, `\`, `\134`)
		ordered = strings.ReplaceAll(ordered, " ", `\040`)
		ordered = strings.ReplaceAll(ordered, "\n", `\012`)
		require.Equal(t, ordered, EscapeMessage(msg), msg)

		reversed := strings.ReplaceAll(ordered, `\040`, " ")
		reversed = strings.ReplaceAll(reversed, `\012`, "\n")
		reversed = strings.ReplaceAll(reversed, `\134`, `\`)
		require.Equal(t, msg, reversed, msg)

		require.Equal(t, msg, UnescapeMessage(EscapeMessage(msg)), msg)
	}
}

func TestEscapeMessageNonASCII(t *testing.T) {
	msg := "Zeit\tsynchronisiert: Übersicht"
	escaped := EscapeMessage(msg)

	require.NotContains(t, escaped, " ")
	require.Contains(t, escaped, `\011`)
	for i := 0; i < len(escaped); i++ {
		require.True(t, escaped[i] > 0x20 && escaped[i] < 0x7f)
	}
	require.Equal(t, msg, UnescapeMessage(escaped))
}

func TestUnescapeMessageKeepsMalformedEscapes(t *testing.T) {
	require.Equal(t, `\9`, UnescapeMessage(`\9`))
	require.Equal(t, `\12`, UnescapeMessage(`\12`))
	require.Equal(t, `\777`, UnescapeMessage(`\777`))
}

func TestReportPayloads(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{name: "client name", report: SetClientName{Name: "sys-whonix"}, want: "set_client_name sys-whonix"},
		{name: "sdwdate", report: SetSdwdateStatus{Status: SdwdateSuccess, Message: "Time sync done.\nok"}, want: `set_sdwdate_status success Time\040sync\040done.\012ok`},
		{name: "sdwdate empty message", report: SetSdwdateStatus{Status: SdwdateBusy}, want: "set_sdwdate_status busy "},
		{name: "tor", report: SetTorStatus{Status: TorDisabledRunning}, want: "set_tor_status disabled-running"},
		{name: "tor absent", report: SetTorStatus{Status: TorAbsent}, want: "set_tor_status absent"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := tc.report.Payload()
			require.NoError(t, err)
			require.Equal(t, tc.want, string(payload))
		})
	}
}

func TestReportPayloadValidation(t *testing.T) {
	_, err := SetClientName{Name: ""}.Payload()
	require.Error(t, err)

	_, err = SetClientName{Name: "two words"}.Payload()
	require.Error(t, err)

	_, err = SetClientName{Name: "héllo"}.Payload()
	require.ErrorIs(t, err, ErrNotPrintable)

	_, err = SetSdwdateStatus{Status: "weird"}.Payload()
	require.Error(t, err)

	_, err = SetTorStatus{Status: "disabled_running"}.Payload()
	require.Error(t, err)
}

func TestParseSdwdateStatus(t *testing.T) {
	for _, s := range []string{"success", "busy", "error"} {
		status, err := ParseSdwdateStatus(s)
		require.NoError(t, err)
		require.Equal(t, SdwdateStatus(s), status)
	}

	_, err := ParseSdwdateStatus("Success")
	require.Error(t, err)
}
