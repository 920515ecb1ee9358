// Package manifest loads HCL estimate manifests for non-interactive runs.
//
// A manifest names a region and a list of items to price:
//
//	region = "us-east-1"
//
//	item {
//	  service  = "AmazonS3"
//	  family   = "Storage"
//	  label    = "General Purpose"
//	  quantity = 100
//	}
//
// An item matches an offer either by sku (the full rate code) or by
// family plus label under a pricing model (default OnDemand).
package manifest

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"aws-cost/core/catalog"
	"aws-cost/core/offers"
	"aws-cost/internal/errors"
)

// Manifest is a parsed estimate manifest
type Manifest struct {
	// Region is the region every item is priced in
	Region string

	// Items are the requested lines, in file order
	Items []Item
}

// Item is one requested line in a manifest
type Item struct {
	// Service is the catalog service code
	Service string

	// Model is the pricing model (default OnDemand)
	Model string

	// Family scopes label matching to one product family
	Family string

	// SKU is a full rate code; when set it wins over family and label
	SKU string

	// Label matches one pricing option within Family
	Label string

	// Quantity is the positive quantity to price
	Quantity decimal.Decimal

	// SourceLine is the item block's line in the manifest file
	SourceLine int
}

var manifestSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "region", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "item"},
	},
}

var itemSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "service", Required: true},
		{Name: "model"},
		{Name: "family"},
		{Name: "sku"},
		{Name: "label"},
		{Name: "quantity", Required: true},
	},
}

// Load reads and parses a manifest file
func Load(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("reading manifest", err)
	}
	return Parse(src, path)
}

// Parse parses manifest source. The filename is used in positions only.
func Parse(src []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError("parsing manifest", diags)
	}

	content, diags := file.Body.Content(manifestSchema)
	if diags.HasErrors() {
		return nil, diagError("reading manifest body", diags)
	}

	m := &Manifest{}

	region, err := attrString(content.Attributes, "region")
	if err != nil {
		return nil, err
	}
	if !catalog.IsKnownRegion(region) {
		return nil, errors.Inputf("unknown region %q in manifest", region)
	}
	m.Region = region

	for _, block := range content.Blocks {
		item, err := parseItem(block)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, *item)
	}

	if len(m.Items) == 0 {
		return nil, errors.Input("manifest has no item blocks")
	}
	return m, nil
}

func parseItem(block *hcl.Block) (*Item, error) {
	content, diags := block.Body.Content(itemSchema)
	if diags.HasErrors() {
		return nil, diagError("reading item block", diags)
	}

	item := &Item{SourceLine: block.DefRange.Start.Line}

	var err error
	if item.Service, err = attrString(content.Attributes, "service"); err != nil {
		return nil, err
	}
	if item.Model, err = attrString(content.Attributes, "model"); err != nil {
		return nil, err
	}
	if item.Family, err = attrString(content.Attributes, "family"); err != nil {
		return nil, err
	}
	if item.SKU, err = attrString(content.Attributes, "sku"); err != nil {
		return nil, err
	}
	if item.Label, err = attrString(content.Attributes, "label"); err != nil {
		return nil, err
	}

	if item.Model == "" {
		item.Model = offers.ModelOnDemand.String()
	}
	if item.Service == "" {
		return nil, errors.Inputf("item at line %d has an empty service", item.SourceLine)
	}
	if item.SKU == "" && item.Label == "" {
		return nil, errors.Inputf("item at line %d needs a sku or a label", item.SourceLine)
	}
	if item.SKU == "" && item.Family == "" {
		return nil, errors.Inputf("item at line %d needs a family to match its label", item.SourceLine)
	}

	if item.Quantity, err = attrQuantity(content.Attributes, "quantity"); err != nil {
		return nil, err
	}
	if !item.Quantity.IsPositive() {
		return nil, errors.Inputf("item at line %d has a non-positive quantity %s",
			item.SourceLine, item.Quantity.String())
	}

	return item, nil
}

// attrString evaluates an optional string attribute; absent means ""
func attrString(attrs hcl.Attributes, name string) (string, error) {
	attr, ok := attrs[name]
	if !ok {
		return "", nil
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", diagError("evaluating "+name, diags)
	}
	if val.IsNull() {
		return "", nil
	}
	if val.Type() != cty.String {
		return "", errors.Parsing(
			fmt.Sprintf("%s at %s must be a string", name, attr.Range.String()), nil)
	}
	return val.AsString(), nil
}

// attrQuantity evaluates a number attribute with full decimal precision.
// The cty big float is rendered textually so values like 0.000003 survive
// exactly.
func attrQuantity(attrs hcl.Attributes, name string) (decimal.Decimal, error) {
	attr, ok := attrs[name]
	if !ok {
		return decimal.Decimal{}, errors.Inputf("missing %s attribute", name)
	}

	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Decimal{}, diagError("evaluating "+name, diags)
	}
	if val.IsNull() || val.Type() != cty.Number {
		return decimal.Decimal{}, errors.Parsing(
			fmt.Sprintf("%s at %s must be a number", name, attr.Range.String()), nil)
	}

	text := val.AsBigFloat().Text('f', -1)
	qty, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, errors.Parsing(
			fmt.Sprintf("%s at %s is not a usable number", name, attr.Range.String()), err)
	}
	return qty, nil
}

// diagError converts HCL diagnostics into a parsing error naming the
// first error's position
func diagError(msg string, diags hcl.Diagnostics) error {
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		if diag.Subject != nil {
			return errors.Parsing(
				fmt.Sprintf("%s at %s: %s", msg, diag.Subject.String(), diag.Summary), diags)
		}
		return errors.Parsing(fmt.Sprintf("%s: %s", msg, diag.Summary), diags)
	}
	return errors.Parsing(msg, diags)
}
