// Package ui - Terminal user interface
// CLI output with headers, status lines, tables and colors.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out     io.Writer
	noColor bool
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{out: out, noColor: noColor}
}

// Color applies color if enabled
func (w *Writer) Color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println("%s", w.Color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println("%s", w.Color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Green, "✓ "), fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Yellow, "⚠ "), fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Red, "✗ "), fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	w.Println("%s%s", w.Color(Blue, "ℹ "), fmt.Sprintf(format, args...))
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	format := ""
	for i, w := range t.widths {
		if i > 0 {
			format += " │ "
		}
		format += fmt.Sprintf("%%-%ds", w)
	}

	headerArgs := make([]interface{}, len(t.headers))
	for i, h := range t.headers {
		headerArgs[i] = h
	}
	t.w.Println("%s", t.w.Color(Bold, strings.TrimRight(fmt.Sprintf(format, headerArgs...), " ")))

	sep := ""
	for i, w := range t.widths {
		if i > 0 {
			sep += "─┼─"
		}
		sep += strings.Repeat("─", w)
	}
	t.w.Println("%s", sep)

	for _, row := range t.rows {
		args := make([]interface{}, len(row))
		for i, cell := range row {
			args[i] = cell
		}
		t.w.Println("%s", strings.TrimRight(fmt.Sprintf(format, args...), " "))
	}
}

// QuoteSummary renders the boxed headline of a quote
type QuoteSummary struct {
	w         *Writer
	Title     string
	Total     string
	Method    string
	Distance  string
	MinCharge string
	Free      bool
}

// NewQuoteSummary creates a quote summary
func (w *Writer) NewQuoteSummary() *QuoteSummary {
	return &QuoteSummary{w: w}
}

// Render prints the quote summary
func (s *QuoteSummary) Render() {
	s.w.Header(s.Title)

	totalColor := Green
	if s.Free {
		totalColor = Cyan
	}
	s.w.Println("%s", s.w.Color(Bold, "╭─────────────────────────────────────╮"))
	s.w.Println("%s%s%s", s.w.Color(Bold, "│"), s.w.Color(totalColor, fmt.Sprintf("  Shipping Cost: %-20s", s.Total)), s.w.Color(Bold, "│"))
	s.w.Println("%s%s%s", s.w.Color(Bold, "│"), s.w.Color(Dim, fmt.Sprintf("  Method:        %-20s", s.Method)), s.w.Color(Bold, "│"))
	s.w.Println("%s", s.w.Color(Bold, "╰─────────────────────────────────────╯"))
	s.w.Println("")

	s.w.Println("%s", s.w.Color(Dim, "  Distance:   "+s.Distance))
	s.w.Println("%s", s.w.Color(Dim, "  Min charge: "+s.MinCharge))
}
