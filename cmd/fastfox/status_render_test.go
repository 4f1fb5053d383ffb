package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Moved", statusOK, "3", false)
	if line != "  Moved:               [OK] 3" {
		t.Fatalf("unexpected line %q", line)
	}
	colored := renderStatusLine("Failed", statusError, "", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red line, got %q", colored)
	}
}

func TestShouldColorizeIgnoresBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]column{{title: "File"}, {title: "Status", align: alignRight}}, [][]string{{"a.pdf"}})
	// Rounded style upper-cases header titles.
	for _, want := range []string{"FILE", "STATUS", "a.pdf"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty table for no headers")
	}
}

func TestKeepTailPreservesFileName(t *testing.T) {
	long := "/very/long/path/that/keeps/going/and/going/until/it/ends/in/orders.csv"
	got := keepTail(long, 30)
	if len([]rune(got)) != 30 || !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "orders.csv") {
		t.Fatalf("unexpected shortened path %q", got)
	}
	if keepTail("short.csv", 30) != "short.csv" {
		t.Fatal("short values must be unchanged")
	}
}
