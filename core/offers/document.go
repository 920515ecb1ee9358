// Package offers fetches per-service regional pricing documents and
// normalizes them into flat offer records.
package offers

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingModel is the billing scheme of an offer term. Offer files name
// further models beyond the two common ones; those pass through verbatim.
type PricingModel string

const (
	// ModelOnDemand is pay-as-you-go pricing
	ModelOnDemand PricingModel = "OnDemand"

	// ModelReserved is reserved/pre-paid pricing
	ModelReserved PricingModel = "Reserved"
)

// String returns the model name
func (m PricingModel) String() string {
	return string(m)
}

// OfferRecord is one priced rate dimension of a service.
//
// SKU carries the full rate code (productSku.termCode.dimension), which is
// unique within a document; ProductSKU is its first segment. PricePerUnit is
// always an exact decimal, never binary floating point.
type OfferRecord struct {
	// SKU uniquely identifies the record within its document
	SKU string `json:"sku"`

	// ProductSKU is the product the rate belongs to
	ProductSKU string `json:"product_sku"`

	// ProductFamily is the coarse offer grouping, e.g. "Storage"
	ProductFamily string `json:"product_family"`

	// ProductAttributes are the product's descriptive attributes
	ProductAttributes map[string]string `json:"product_attributes,omitempty"`

	// PricingModel is the term the rate was published under
	PricingModel PricingModel `json:"pricing_model"`

	// Description is the rate dimension's published description
	Description string `json:"description,omitempty"`

	// Unit is the billing unit, e.g. "GB-Mo" or "Requests"
	Unit string `json:"unit"`

	// PricePerUnit is the exact unit price
	PricePerUnit decimal.Decimal `json:"price_per_unit"`

	// Currency is the price currency
	Currency string `json:"currency"`
}

// Attribute returns a product attribute value, or "" when absent
func (r OfferRecord) Attribute(key string) string {
	return r.ProductAttributes[key]
}

// RegionPricingDocument holds every usable offer of one (service, region)
// pair. Documents are immutable after normalization and live only for the
// session (the cache discards them on expiry, the process on exit).
type RegionPricingDocument struct {
	// ServiceCode identifies the service
	ServiceCode string `json:"service_code"`

	// Region is the region the offers are priced for
	Region string `json:"region"`

	// Offers are the normalized records in canonical document order
	Offers []OfferRecord `json:"offers"`

	// Version is the offer file version the document was built from
	Version string `json:"version,omitempty"`

	// FetchedAt records when the document was retrieved
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of offers in the document
func (d *RegionPricingDocument) Len() int {
	return len(d.Offers)
}
