package options

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"aws-cost/core/offers"
)

func fixtureDocument() *offers.RegionPricingDocument {
	return &offers.RegionPricingDocument{
		ServiceCode: "AmazonEC2",
		Region:      "us-east-1",
		Offers: []offers.OfferRecord{
			{
				SKU:           "EC2A.JRTCKXETXF.6YS6EN2CT7",
				ProductSKU:    "EC2A",
				ProductFamily: "Compute Instance",
				ProductAttributes: map[string]string{
					"instanceType":    "t3.micro",
					"operatingSystem": "Linux",
					"tenancy":         "Shared",
				},
				PricingModel: offers.ModelOnDemand,
				Unit:         "Hrs",
				PricePerUnit: decimal.RequireFromString("0.0104"),
				Currency:     "USD",
			},
			{
				SKU:           "EC2B.JRTCKXETXF.6YS6EN2CT7",
				ProductSKU:    "EC2B",
				ProductFamily: "Compute Instance",
				ProductAttributes: map[string]string{
					"instanceType": "c5.large",
				},
				PricingModel: offers.ModelOnDemand,
				Unit:         "Hrs",
				PricePerUnit: decimal.RequireFromString("0.085"),
				Currency:     "USD",
			},
			{
				SKU:           "EBS1.JRTCKXETXF.6YS6EN2CT7",
				ProductSKU:    "EBS1",
				ProductFamily: "Storage",
				ProductAttributes: map[string]string{
					"volumeType": "General Purpose",
				},
				PricingModel: offers.ModelOnDemand,
				Unit:         "GB-Mo",
				PricePerUnit: decimal.RequireFromString("0.08"),
				Currency:     "USD",
			},
			{
				SKU:           "EBS2.JRTCKXETXF.6YS6EN2CT7",
				ProductSKU:    "EBS2",
				ProductFamily: "Storage",
				ProductAttributes: map[string]string{
					"volumeType": "General Purpose",
				},
				PricingModel: offers.ModelOnDemand,
				Unit:         "GB-Mo",
				PricePerUnit: decimal.RequireFromString("0.10"),
				Currency:     "USD",
			},
			{
				SKU:               "MISC.JRTCKXETXF.6YS6EN2CT7",
				ProductSKU:        "MISC",
				ProductFamily:     "Storage",
				ProductAttributes: map[string]string{},
				PricingModel:      offers.ModelOnDemand,
				Unit:              "GB-Mo",
				PricePerUnit:      decimal.RequireFromString("0.05"),
				Currency:          "USD",
			},
			{
				SKU:           "EC2A.RESERVED1.001",
				ProductSKU:    "EC2A",
				ProductFamily: "Compute Instance",
				ProductAttributes: map[string]string{
					"instanceType":    "t3.micro",
					"operatingSystem": "Linux",
					"tenancy":         "Shared",
				},
				PricingModel: offers.ModelReserved,
				Unit:         "Hrs",
				PricePerUnit: decimal.RequireFromString("0.0067"),
				Currency:     "USD",
			},
		},
	}
}

// TestBuildOptionsFiltering tests exact model and family matching
func TestBuildOptionsFiltering(t *testing.T) {
	doc := fixtureDocument()

	opts := BuildOptions(doc, offers.ModelOnDemand, "Compute Instance")
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}

	// Document order is preserved.
	if opts[0].SKU != "EC2A.JRTCKXETXF.6YS6EN2CT7" || opts[1].SKU != "EC2B.JRTCKXETXF.6YS6EN2CT7" {
		t.Errorf("unexpected option order: %s, %s", opts[0].SKU, opts[1].SKU)
	}

	reserved := BuildOptions(doc, offers.ModelReserved, "Compute Instance")
	if len(reserved) != 1 {
		t.Fatalf("expected 1 reserved option, got %d", len(reserved))
	}
	if reserved[0].SKU != "EC2A.RESERVED1.001" {
		t.Errorf("unexpected reserved option: %s", reserved[0].SKU)
	}
}

// TestBuildOptionsEmptyMatches tests that zero matches are not an error
func TestBuildOptionsEmptyMatches(t *testing.T) {
	doc := fixtureDocument()

	tests := []struct {
		name   string
		model  offers.PricingModel
		family string
	}{
		{"unknown family", offers.ModelOnDemand, "Quantum Compute"},
		{"case mismatch", offers.ModelOnDemand, "compute instance"},
		{"model without family", offers.ModelReserved, "Storage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if opts := BuildOptions(doc, tt.model, tt.family); len(opts) != 0 {
				t.Errorf("expected no options, got %d", len(opts))
			}
		})
	}

	if opts := BuildOptions(nil, offers.ModelOnDemand, "Storage"); opts != nil {
		t.Errorf("expected nil for nil document, got %v", opts)
	}
}

// TestLabels tests the label derivation rules
func TestLabels(t *testing.T) {
	tests := []struct {
		name     string
		rec      offers.OfferRecord
		expected string
	}{
		{
			name: "compute triple",
			rec: offers.OfferRecord{
				SKU:           "A.B.C",
				ProductFamily: "Compute Instance",
				ProductAttributes: map[string]string{
					"instanceType":    "t3.micro",
					"operatingSystem": "Linux",
					"tenancy":         "Shared",
				},
			},
			expected: "t3.micro-Linux-Shared",
		},
		{
			name: "compute with missing attributes skips them",
			rec: offers.OfferRecord{
				SKU:               "A.B.C",
				ProductFamily:     "Compute Instance (bare metal)",
				ProductAttributes: map[string]string{"instanceType": "c5.metal"},
			},
			expected: "c5.metal",
		},
		{
			name: "descriptive attribute",
			rec: offers.OfferRecord{
				SKU:               "A.B.C",
				ProductFamily:     "Storage",
				ProductAttributes: map[string]string{"volumeType": "Provisioned IOPS"},
			},
			expected: "Provisioned IOPS",
		},
		{
			name: "sku fallback",
			rec: offers.OfferRecord{
				SKU:               "MISC.JRTCKXETXF.6YS6EN2CT7",
				ProductFamily:     "Storage",
				ProductAttributes: map[string]string{},
			},
			expected: "MISC.JRTCKXETXF.6YS6EN2CT7",
		},
		{
			name: "family and unit last resort",
			rec: offers.OfferRecord{
				ProductFamily: "Data Transfer",
				Unit:          "GB",
			},
			expected: "Data Transfer — GB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.rec); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestDuplicateLabelsDisambiguated tests the rate-code suffix
func TestDuplicateLabelsDisambiguated(t *testing.T) {
	doc := fixtureDocument()

	opts := BuildOptions(doc, offers.ModelOnDemand, "Storage")
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}

	if opts[0].Label != "General Purpose [EBS1.JRTCKXETXF.6YS6EN2CT7]" {
		t.Errorf("expected suffixed label, got %q", opts[0].Label)
	}
	if opts[1].Label != "General Purpose [EBS2.JRTCKXETXF.6YS6EN2CT7]" {
		t.Errorf("expected suffixed label, got %q", opts[1].Label)
	}
	// The unique label stays untouched.
	if opts[2].Label != "MISC.JRTCKXETXF.6YS6EN2CT7" {
		t.Errorf("expected unsuffixed label, got %q", opts[2].Label)
	}

	seen := make(map[string]bool)
	for _, o := range opts {
		if seen[o.Label] {
			t.Errorf("duplicate label after disambiguation: %q", o.Label)
		}
		seen[o.Label] = true
	}
}

// TestBuildOptionsIdempotent tests that rebuilding yields identical options
func TestBuildOptionsIdempotent(t *testing.T) {
	doc := fixtureDocument()

	first := BuildOptions(doc, offers.ModelOnDemand, "Storage")
	second := BuildOptions(doc, offers.ModelOnDemand, "Storage")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %v then %v", first, second)
	}
}

// TestModelsAndFamilies tests the document enumerations
func TestModelsAndFamilies(t *testing.T) {
	doc := fixtureDocument()

	models := Models(doc)
	if !reflect.DeepEqual(models, []offers.PricingModel{offers.ModelOnDemand, offers.ModelReserved}) {
		t.Errorf("unexpected models: %v", models)
	}

	families := Families(doc, offers.ModelOnDemand)
	if !reflect.DeepEqual(families, []string{"Compute Instance", "Storage"}) {
		t.Errorf("unexpected OnDemand families: %v", families)
	}

	families = Families(doc, offers.ModelReserved)
	if !reflect.DeepEqual(families, []string{"Compute Instance"}) {
		t.Errorf("unexpected Reserved families: %v", families)
	}
}
