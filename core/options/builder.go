// Package options turns raw offer records into selectable, human-labeled
// pricing options.
package options

import (
	"strings"

	"github.com/shopspring/decimal"

	"aws-cost/core/determinism"
	"aws-cost/core/offers"
)

// PricingOption is the user-facing view of one offer record
type PricingOption struct {
	// Label is the display label built from the record's attributes
	Label string `json:"label"`

	// SKU is the underlying record's rate code
	SKU string `json:"sku"`

	// Unit is the billing unit, echoed at the quantity prompt
	Unit string `json:"unit"`

	// PricePerUnit is the exact unit price
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// descriptiveAttributes are tried in order for non-compute labels. The list
// covers the families the catalog describes with a single attribute well:
// block storage, object storage, databases, notifications, usage groups.
var descriptiveAttributes = []string{
	"instanceType",
	"volumeType",
	"storageClass",
	"databaseEngine",
	"group",
	"messageDeliveryFrequency",
	"usagetype",
}

// BuildOptions filters a document's offers to one (pricing model, product
// family) pair and labels each match.
//
// Matching is case-sensitive and exact. Zero matches yield an empty list,
// not an error. The result follows the document's offer order without
// re-sorting, so repeated calls on the same document are identical.
func BuildOptions(doc *offers.RegionPricingDocument, model offers.PricingModel, family string) []PricingOption {
	if doc == nil {
		return nil
	}

	var opts []PricingOption
	for _, rec := range doc.Offers {
		if rec.PricingModel != model || rec.ProductFamily != family {
			continue
		}
		opts = append(opts, PricingOption{
			Label:        buildLabel(rec),
			SKU:          rec.SKU,
			Unit:         rec.Unit,
			PricePerUnit: rec.PricePerUnit,
		})
	}

	disambiguate(opts)
	return opts
}

// Label derives the display label for a single record. Unlike
// BuildOptions it applies no duplicate suffixing, since there is no
// sibling set to collide with.
func Label(rec offers.OfferRecord) string {
	return buildLabel(rec)
}

// buildLabel derives a display label from a record.
//
// Compute-instance families concatenate instanceType, operatingSystem and
// tenancy, dash-joined in that order. Other families use the first
// descriptive attribute present, then the SKU; the generic family/unit form
// is the last resort for records carrying nothing else.
func buildLabel(rec offers.OfferRecord) string {
	if isComputeFamily(rec.ProductFamily) {
		parts := make([]string, 0, 3)
		for _, key := range []string{"instanceType", "operatingSystem", "tenancy"} {
			if v := rec.Attribute(key); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "-")
		}
	}

	for _, key := range descriptiveAttributes {
		if v := rec.Attribute(key); v != "" {
			return v
		}
	}

	if rec.SKU != "" {
		return rec.SKU
	}
	return rec.ProductFamily + " — " + rec.Unit
}

// isComputeFamily reports whether a product family gets the instance label.
// "Compute Instance" and its bare-metal variant share the prefix.
func isComputeFamily(family string) bool {
	return strings.HasPrefix(family, "Compute Instance")
}

// disambiguate suffixes duplicate labels with their rate code so every
// option in a menu is distinguishable.
func disambiguate(opts []PricingOption) {
	counts := make(map[string]int, len(opts))
	for _, o := range opts {
		counts[o.Label]++
	}
	for i := range opts {
		if counts[opts[i].Label] > 1 {
			opts[i].Label = opts[i].Label + " [" + opts[i].SKU + "]"
		}
	}
}

// Models enumerates the pricing models present in a document, sorted
func Models(doc *offers.RegionPricingDocument) []offers.PricingModel {
	set := make(map[string]struct{})
	for _, rec := range doc.Offers {
		set[string(rec.PricingModel)] = struct{}{}
	}
	models := make([]offers.PricingModel, 0, len(set))
	for _, name := range determinism.SortedStringKeys(set) {
		models = append(models, offers.PricingModel(name))
	}
	return models
}

// Families enumerates the product families present under a pricing model,
// sorted and distinct
func Families(doc *offers.RegionPricingDocument, model offers.PricingModel) []string {
	set := make(map[string]struct{})
	for _, rec := range doc.Offers {
		if rec.PricingModel == model {
			set[rec.ProductFamily] = struct{}{}
		}
	}
	return determinism.SortedStringKeys(set)
}
