// Package ui - Terminal user interface
// Menus, tables, and colored output for the interactive estimator.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Colors for terminal output
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes a line
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println(w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println(w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Green, "✓ ") + msg)
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Yellow, "⚠ ") + msg)
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Red, "✗ ") + msg)
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Blue, "ℹ ") + msg)
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Dim, "  "+msg))
}

// Table renders a table
type Table struct {
	w          *Writer
	headers    []string
	rows       [][]string
	widths     []int
	rightAlign map[int]bool
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		w:          w,
		headers:    headers,
		rows:       [][]string{},
		widths:     widths,
		rightAlign: map[int]bool{},
	}
}

// AlignRight right-aligns the given columns; use for money and counts
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.rightAlign[c] = true
	}
	return t
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = t.pad(i, h)
	}
	t.w.Println(t.w.color(Bold, strings.Join(cells, " │ ")))

	sep := ""
	for i, width := range t.widths {
		if i > 0 {
			sep += "─┼─"
		}
		sep += strings.Repeat("─", width)
	}
	t.w.Println(sep)

	for _, row := range t.rows {
		for i, cell := range row {
			cells[i] = t.pad(i, cell)
		}
		t.w.Println(strings.Join(cells, " │ "))
	}
}

func (t *Table) pad(col int, text string) string {
	if t.rightAlign[col] {
		return fmt.Sprintf("%*s", t.widths[col], text)
	}
	return fmt.Sprintf("%-*s", t.widths[col], text)
}

// GroupTotal is one service and pricing model subtotal
type GroupTotal struct {
	Service  string
	Model    string
	Subtotal string
}

// CostSummary renders the end-of-session cost summary
type CostSummary struct {
	w          *Writer
	Region     string
	Currency   string
	GrandTotal string
	Items      int
	Groups     []GroupTotal
}

// NewCostSummary creates a cost summary
func (w *Writer) NewCostSummary() *CostSummary {
	return &CostSummary{w: w}
}

// Render prints the cost summary
func (s *CostSummary) Render() {
	s.w.Header("Cost Summary")

	// Main cost box
	s.w.Println(s.w.color(Bold, "╭─────────────────────────────────────╮"))
	s.w.Println(s.w.color(Bold, "│") + s.w.color(Green, fmt.Sprintf("  Grand Total:  %-21s", s.GrandTotal+" "+s.Currency)) + s.w.color(Bold, "│"))
	s.w.Println(s.w.color(Bold, "│") + s.w.color(Dim, fmt.Sprintf("  Region:       %-21s", s.Region)) + s.w.color(Bold, "│"))
	s.w.Println(s.w.color(Bold, "╰─────────────────────────────────────╯"))

	if len(s.Groups) > 0 {
		s.w.Println("")
		s.w.SubHeader("By Service and Pricing Model")
		table := s.w.NewTable("Service", "Model", "Subtotal").AlignRight(2)
		for _, g := range s.Groups {
			table.AddRow(g.Service, g.Model, g.Subtotal)
		}
		table.Render()
	}

	s.w.Println("")
	s.w.Println(s.w.color(Dim, fmt.Sprintf("  Line items: %d", s.Items)))
}

// Spinner shows a loading spinner
type Spinner struct {
	w       *Writer
	label   string
	frames  []string
	current int
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner
func (w *Writer) NewSpinner(label string) *Spinner {
	return &Spinner{
		w:      w,
		label:  label,
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start starts the spinner
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				close(s.done)
				return
			case <-ticker.C:
				s.current = (s.current + 1) % len(s.frames)
				fmt.Fprintf(s.w.out, "\r%s %s", s.w.color(Cyan, s.frames[s.current]), s.label)
			}
		}
	}()
}

// Stop stops the spinner
func (s *Spinner) Stop(success bool) {
	close(s.stop)
	<-s.done

	icon := s.w.color(Green, "✓")
	if !success {
		icon = s.w.color(Red, "✗")
	}
	fmt.Fprintf(s.w.out, "\r%s %s\n", icon, s.label)
}
