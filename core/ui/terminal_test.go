package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriterStatusLines(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"success", func(w *Writer) { w.Success("loaded %d items", 2) }, "✓ loaded 2 items\n"},
		{"warning", func(w *Writer) { w.Warning("stale") }, "⚠ stale\n"},
		{"error", func(w *Writer) { w.Error("failed") }, "✗ failed\n"},
		{"info", func(w *Writer) { w.Info("%s", "snapshot ready") }, "ℹ snapshot ready\n"},
		{"subheader", func(w *Writer) { w.SubHeader("Origins") }, "▸ Origins\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.write(NewWriter(&buf, true))
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriterColor(t *testing.T) {
	var buf bytes.Buffer
	if got := NewWriter(&buf, false).Color(Red, "x"); got != Red+"x"+Reset {
		t.Errorf("Color = %q", got)
	}
	if got := NewWriter(&buf, true).Color(Red, "x"); got != "x" {
		t.Errorf("no-color Color = %q", got)
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewWriter(&buf, true).NewTable("ORIGIN", "KM")
	tbl.AddRow("kopo", "12")
	tbl.AddRow("banjaran", "22")
	tbl.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "ORIGIN   │ KM" || lines[3] != "banjaran │ 22" {
		t.Errorf("table = %q", lines)
	}
}
