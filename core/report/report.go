// Package report turns accumulated line items into rendered cost reports.
// This package produces human and machine-readable outputs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aws-cost/core/cost"
	"aws-cost/internal/errors"
)

// Result contains the complete estimation output
type Result struct {
	// ID uniquely identifies this report
	ID string `json:"id"`

	// Region is the region every item was priced in
	Region string `json:"region"`

	// Currency is the report currency
	Currency string `json:"currency"`

	// GeneratedAt is when the report was produced
	GeneratedAt time.Time `json:"generated_at"`

	// Items are the confirmed line items in selection order
	Items []cost.LineItem `json:"items"`

	// Groups are subtotals by service and pricing model, in first
	// appearance order
	Groups []GroupSubtotal `json:"groups"`

	// GrandTotal is the sum of all item costs
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// GroupSubtotal is one service and pricing model subtotal
type GroupSubtotal struct {
	Service  string          `json:"service"`
	Model    string          `json:"pricing_model"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// New builds a result from line items
func New(region string, items []cost.LineItem) *Result {
	summary := cost.Summarize(items)

	keys := summary.GroupKeys()
	groups := make([]GroupSubtotal, 0, len(keys))
	for _, key := range keys {
		subtotal, _ := summary.Subtotal(key)
		groups = append(groups, GroupSubtotal{
			Service:  key.Service,
			Model:    key.PricingModel,
			Subtotal: subtotal,
		})
	}

	return &Result{
		ID:          uuid.NewString(),
		Region:      region,
		Currency:    summary.Currency,
		GeneratedAt: time.Now().UTC(),
		Items:       summary.Items,
		Groups:      groups,
		GrandTotal:  summary.GrandTotal,
	}
}

// Save renders the result under dir in the given format and returns the
// file path
func Save(result *Result, dir string, format Format) (string, error) {
	formatter, ok := Lookup(format)
	if !ok {
		return "", errors.Inputf("unknown output format %q", format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Config("creating report directory", err)
	}

	name := fmt.Sprintf("estimate-%s-%s.%s",
		result.Region,
		result.GeneratedAt.Format("20060102-150405"),
		extension(format))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Config("creating report file", err)
	}
	if err := formatter.Render(file, result); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", errors.Config("writing report file", err)
	}
	return path, nil
}

func extension(format Format) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}
