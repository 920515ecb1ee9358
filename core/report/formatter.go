package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"aws-cost/core/ui"
	"aws-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable text table
	FormatTable Format = "table"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *Result) error
}

var registry = map[Format]Formatter{}

// Register adds a formatter to the registry, replacing any previous one
// for the same format
func Register(f Formatter) {
	registry[f.Format()] = f
}

// Lookup returns the formatter for a format type
func Lookup(format Format) (Formatter, bool) {
	f, ok := registry[format]
	return f, ok
}

// Formats returns the registered format names, sorted
func Formats() []string {
	names := make([]string, 0, len(registry))
	for format := range registry {
		names = append(names, string(format))
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(&tableFormatter{})
	Register(&jsonFormatter{})
	Register(&markdownFormatter{})
}

// tableFormatter renders a plain-text table. Color is always off so the
// output is safe to redirect to a file.
type tableFormatter struct{}

func (f *tableFormatter) Format() Format { return FormatTable }

func (f *tableFormatter) Render(w io.Writer, result *Result) error {
	uw := ui.NewWriter(w, true)

	uw.Println("AWS Cost Estimate")
	uw.Println("Region:    %s", result.Region)
	uw.Println("Generated: %s", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	uw.Println("")

	if len(result.Items) == 0 {
		uw.Println("No line items.")
		return nil
	}

	items := uw.NewTable("Service", "Model", "Label", "Quantity", "Unit", "Unit Price", "Cost").
		AlignRight(3, 5, 6)
	for _, item := range result.Items {
		items.AddRow(
			item.Service,
			item.PricingModel,
			item.Label,
			item.Quantity.String(),
			item.Unit,
			item.UnitPrice.String(),
			item.Cost.String(),
		)
	}
	items.Render()

	uw.Println("")
	subtotals := uw.NewTable("Service", "Model", "Subtotal").AlignRight(2)
	for _, g := range result.Groups {
		subtotals.AddRow(g.Service, g.Model, g.Subtotal.String())
	}
	subtotals.Render()

	uw.Println("")
	uw.Println("Grand Total: %s %s", result.GrandTotal.String(), result.Currency)
	return nil
}

// jsonFormatter renders the result as indented JSON
type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format { return FormatJSON }

func (f *jsonFormatter) Render(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return errors.Internal("encoding report", err)
	}
	return nil
}

// markdownFormatter renders a markdown report
type markdownFormatter struct{}

func (f *markdownFormatter) Format() Format { return FormatMarkdown }

func (f *markdownFormatter) Render(w io.Writer, result *Result) error {
	var b strings.Builder

	b.WriteString("# AWS Cost Estimate\n\n")
	fmt.Fprintf(&b, "- Region: `%s`\n", result.Region)
	fmt.Fprintf(&b, "- Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Currency: %s\n\n", result.Currency)

	if len(result.Items) == 0 {
		b.WriteString("No line items.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("| Service | Model | Label | Quantity | Unit | Unit Price | Cost |\n")
	b.WriteString("|---|---|---|---:|---|---:|---:|\n")
	for _, item := range result.Items {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			escapeCell(item.Service),
			escapeCell(item.PricingModel),
			escapeCell(item.Label),
			item.Quantity.String(),
			escapeCell(item.Unit),
			item.UnitPrice.String(),
			item.Cost.String(),
		)
	}

	b.WriteString("\n## Subtotals\n\n")
	b.WriteString("| Service | Model | Subtotal |\n")
	b.WriteString("|---|---|---:|\n")
	for _, g := range result.Groups {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escapeCell(g.Service), escapeCell(g.Model), g.Subtotal.String())
	}

	fmt.Fprintf(&b, "\n**Grand Total: %s %s**\n", result.GrandTotal.String(), result.Currency)

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeCell keeps pipes inside labels from breaking table cells
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
