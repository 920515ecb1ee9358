package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"aws-cost/core/cost"
	"aws-cost/internal/errors"
)

func testResult() *Result {
	items := []cost.LineItem{
		cost.NewLineItem(cost.LineItem{
			Service:      "AmazonS3",
			PricingModel: "OnDemand",
			Family:       "Storage",
			Label:        "General Purpose",
			Region:       "us-east-1",
			Unit:         "GB-Mo",
			UnitPrice:    decimal.RequireFromString("0.20"),
			Quantity:     decimal.RequireFromString("2"),
		}),
		cost.NewLineItem(cost.LineItem{
			Service:      "AmazonSNS",
			PricingModel: "OnDemand",
			Family:       "API Request",
			Label:        "Requests-Tier1",
			Region:       "us-east-1",
			Unit:         "Requests",
			UnitPrice:    decimal.RequireFromString("0.000003"),
			Quantity:     decimal.RequireFromString("1"),
		}),
	}
	return New("us-east-1", items)
}

// TestNewResult tests result assembly from line items
func TestNewResult(t *testing.T) {
	result := testResult()

	if result.ID == "" {
		t.Error("expected a generated report ID")
	}
	if result.Region != "us-east-1" || result.Currency != "USD" {
		t.Errorf("unexpected region/currency: %s/%s", result.Region, result.Currency)
	}
	if result.GeneratedAt.IsZero() || result.GeneratedAt.Location() != time.UTC {
		t.Errorf("expected a UTC timestamp, got %v", result.GeneratedAt)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}

	if result.GrandTotal.String() != "0.400003" {
		t.Errorf("expected grand total 0.400003, got %s", result.GrandTotal.String())
	}

	wantGroups := []GroupSubtotal{
		{Service: "AmazonS3", Model: "OnDemand", Subtotal: decimal.RequireFromString("0.40")},
		{Service: "AmazonSNS", Model: "OnDemand", Subtotal: decimal.RequireFromString("0.000003")},
	}
	if len(result.Groups) != len(wantGroups) {
		t.Fatalf("expected %d groups, got %d", len(wantGroups), len(result.Groups))
	}
	for i, want := range wantGroups {
		got := result.Groups[i]
		if got.Service != want.Service || got.Model != want.Model || !got.Subtotal.Equal(want.Subtotal) {
			t.Errorf("group %d: expected %+v, got %+v", i, want, got)
		}
	}
}

// TestNewResultEmpty tests a result with no items
func TestNewResultEmpty(t *testing.T) {
	result := New("eu-west-1", nil)

	if len(result.Items) != 0 || len(result.Groups) != 0 {
		t.Errorf("expected an empty result, got %d items, %d groups", len(result.Items), len(result.Groups))
	}
	if !result.GrandTotal.IsZero() {
		t.Errorf("expected a zero grand total, got %s", result.GrandTotal.String())
	}
}

// TestFormatterRegistry tests the built-in formatter registrations
func TestFormatterRegistry(t *testing.T) {
	for _, format := range []Format{FormatTable, FormatJSON, FormatMarkdown} {
		f, ok := Lookup(format)
		if !ok {
			t.Errorf("expected a registered formatter for %s", format)
			continue
		}
		if f.Format() != format {
			t.Errorf("formatter for %s reports %s", format, f.Format())
		}
	}

	if _, ok := Lookup(Format("yaml")); ok {
		t.Error("expected no formatter for yaml")
	}

	want := []string{"json", "markdown", "table"}
	if got := Formats(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected formats %v, got %v", want, got)
	}
}

// TestJSONFormatter tests the JSON rendering
func TestJSONFormatter(t *testing.T) {
	f, _ := Lookup(FormatJSON)

	var buf bytes.Buffer
	if err := f.Render(&buf, testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `"grand_total": "0.400003"`) {
		t.Errorf("expected an exact quoted grand total, got:\n%s", out)
	}

	var decoded struct {
		Region string `json:"region"`
		Items  []struct {
			Service  string `json:"service"`
			Cost     string `json:"cost"`
			Currency string `json:"currency"`
		} `json:"items"`
		Groups []struct {
			Service  string `json:"service"`
			Model    string `json:"pricing_model"`
			Subtotal string `json:"subtotal"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Region != "us-east-1" {
		t.Errorf("expected region us-east-1, got %s", decoded.Region)
	}
	if len(decoded.Items) != 2 || decoded.Items[0].Cost != "0.40" {
		t.Errorf("unexpected decoded items: %+v", decoded.Items)
	}
	if len(decoded.Groups) != 2 || decoded.Groups[1].Subtotal != "0.000003" {
		t.Errorf("unexpected decoded groups: %+v", decoded.Groups)
	}
}

// TestMarkdownFormatter tests the markdown rendering
func TestMarkdownFormatter(t *testing.T) {
	f, _ := Lookup(FormatMarkdown)

	var buf bytes.Buffer
	if err := f.Render(&buf, testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# AWS Cost Estimate",
		"- Region: `us-east-1`",
		"| Service | Model | Label | Quantity | Unit | Unit Price | Cost |",
		"|---|---|---|---:|---|---:|---:|",
		"| AmazonS3 | OnDemand | General Purpose | 2 | GB-Mo | 0.20 | 0.40 |",
		"## Subtotals",
		"**Grand Total: 0.400003 USD**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

// TestMarkdownEscapesPipes tests that labels cannot break table cells
func TestMarkdownEscapesPipes(t *testing.T) {
	result := New("us-east-1", []cost.LineItem{
		cost.NewLineItem(cost.LineItem{
			Service:      "AmazonEC2",
			PricingModel: "OnDemand",
			Label:        "weird|label",
			UnitPrice:    decimal.RequireFromString("1"),
			Quantity:     decimal.RequireFromString("1"),
		}),
	})

	f, _ := Lookup(FormatMarkdown)
	var buf bytes.Buffer
	if err := f.Render(&buf, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `weird\|label`) {
		t.Errorf("expected the pipe to be escaped, got:\n%s", buf.String())
	}
}

// TestTableFormatter tests the plain-text rendering
func TestTableFormatter(t *testing.T) {
	f, _ := Lookup(FormatTable)

	var buf bytes.Buffer
	if err := f.Render(&buf, testResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"AWS Cost Estimate",
		"Region:    us-east-1",
		"Service",
		"General Purpose",
		"Grand Total: 0.400003 USD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}

	if strings.Contains(out, "\x1b[") {
		t.Error("expected no color escapes in file output")
	}
}

// TestTableFormatterEmpty tests the zero-item rendering
func TestTableFormatterEmpty(t *testing.T) {
	f, _ := Lookup(FormatTable)

	var buf bytes.Buffer
	if err := f.Render(&buf, New("us-east-1", nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No line items.") {
		t.Errorf("expected a no-items note, got:\n%s", buf.String())
	}
}

// TestSaveReport tests writing reports to disk
func TestSaveReport(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		suffix string
		check  string
	}{
		{"json", FormatJSON, ".json", `"grand_total"`},
		{"markdown", FormatMarkdown, ".md", "# AWS Cost Estimate"},
		{"table", FormatTable, ".txt", "Grand Total:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			result := testResult()

			path, err := Save(result, dir, tt.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			base := filepath.Base(path)
			if !strings.HasPrefix(base, "estimate-us-east-1-") || !strings.HasSuffix(base, tt.suffix) {
				t.Errorf("unexpected file name %s", base)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading report: %v", err)
			}
			if !strings.Contains(string(data), tt.check) {
				t.Errorf("expected file to contain %q", tt.check)
			}
		})
	}
}

// TestSaveUnknownFormat tests the unknown-format rejection
func TestSaveUnknownFormat(t *testing.T) {
	_, err := Save(testResult(), t.TempDir(), Format("yaml"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected TypeInput, got %v", errors.GetType(err))
	}
}

// TestSaveCreatesDirectory tests that nested output directories are created
func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "2026")

	path, err := Save(testResult(), dir, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected the report file to exist: %v", err)
	}
}
