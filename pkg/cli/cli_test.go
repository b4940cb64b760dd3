package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "KIND", "NAME")
	tbl.Row("subnet", "lab-subnet01")
	tbl.Row("vm", "lab-vm01")
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "KIND") || !strings.HasPrefix(lines[1], "----") {
		t.Errorf("missing header or divider:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "lab-subnet01") {
		t.Errorf("row content missing:\n%s", buf.String())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "KIND", "NAME")
	tbl.Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table produced output: %q", buf.String())
	}
}

func TestColorsDisabled(t *testing.T) {
	old := colorEnabled
	colorEnabled = false
	defer func() { colorEnabled = old }()

	if Green("ok") != "ok" || ChangeTag("[ADD]") != "[ADD]" {
		t.Error("colors emitted with NO_COLOR semantics active")
	}
}

func TestChangeTag(t *testing.T) {
	old := colorEnabled
	colorEnabled = true
	defer func() { colorEnabled = old }()

	tests := []struct {
		tag  string
		code string
	}{
		{"[ADD]", "32"},
		{"[MOD]", "33"},
		{"[DEL]", "31"},
	}
	for _, tt := range tests {
		if got := ChangeTag(tt.tag); !strings.Contains(got, "\033["+tt.code+"m") {
			t.Errorf("ChangeTag(%s) = %q, want code %s", tt.tag, got, tt.code)
		}
	}
	if ChangeTag("[???]") != "[???]" {
		t.Error("unknown tag should pass through unchanged")
	}
}
