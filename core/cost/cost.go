// Package cost accumulates confirmed selections as line items and
// aggregates them into grouped subtotals and a grand total.
package cost

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aws-cost/core/determinism"
)

// LineItem is one user-confirmed (option, quantity) pair. Items are
// immutable once constructed; Cost is always UnitPrice times Quantity,
// computed exactly in decimal arithmetic.
type LineItem struct {
	// ID uniquely identifies the line item
	ID string `json:"id"`

	// Service is the catalog service code
	Service string `json:"service"`

	// PricingModel is the billing scheme the option was priced under
	PricingModel string `json:"pricing_model"`

	// SKU is the selected offer's rate code
	SKU string `json:"sku"`

	// Family is the offer's product family
	Family string `json:"family"`

	// Label is the option's display label
	Label string `json:"label"`

	// Region the option was priced for
	Region string `json:"region"`

	// Unit is the billing unit the quantity is expressed in
	Unit string `json:"unit"`

	// UnitPrice is the exact per-unit price
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Quantity is the confirmed positive quantity
	Quantity decimal.Decimal `json:"quantity"`

	// Cost is UnitPrice * Quantity
	Cost decimal.Decimal `json:"cost"`

	// Currency is the cost currency
	Currency string `json:"currency"`
}

// NewLineItem seals a line item: it computes Cost from UnitPrice and
// Quantity and assigns an ID when none is set.
func NewLineItem(item LineItem) LineItem {
	item.Cost = item.UnitPrice.Mul(item.Quantity)
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Currency == "" {
		item.Currency = "USD"
	}
	return item
}

// GroupKey groups line items for subtotaling
type GroupKey struct {
	// Service is the catalog service code
	Service string `json:"service"`

	// PricingModel is the billing scheme
	PricingModel string `json:"pricing_model"`
}

// String returns a stable representation for display and lookup
func (k GroupKey) String() string {
	return k.Service + "/" + k.PricingModel
}

// Summary is the aggregation result: per-(service, pricing model) subtotals
// plus an exact grand total.
type Summary struct {
	// Items are the summarized line items, in input order
	Items []LineItem

	// GrandTotal is the exact sum of all item costs
	GrandTotal decimal.Decimal

	// Currency is the summary currency
	Currency string

	groups *determinism.StableMap[GroupKey, decimal.Decimal]
}

// Summarize groups line items by (service, pricing model) and totals them.
//
// Every subtotal is the exact decimal sum of its items' costs, and the
// grand total equals the sum of the subtotals, which equals the sum of all
// item costs. Group iteration follows first appearance; permuting the
// input permutes presentation order only, never amounts.
func Summarize(items []LineItem) *Summary {
	groups := determinism.NewStableMap[GroupKey, decimal.Decimal]()
	var grand decimal.Decimal
	currency := "USD"

	for i, item := range items {
		if i == 0 && item.Currency != "" {
			currency = item.Currency
		}
		key := GroupKey{Service: item.Service, PricingModel: item.PricingModel}
		subtotal, _ := groups.Get(key)
		groups.Set(key, subtotal.Add(item.Cost))
		grand = grand.Add(item.Cost)
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)

	return &Summary{
		Items:      copied,
		GrandTotal: grand,
		Currency:   currency,
		groups:     groups,
	}
}

// Subtotal returns one group's subtotal
func (s *Summary) Subtotal(key GroupKey) (decimal.Decimal, bool) {
	return s.groups.Get(key)
}

// GroupKeys returns the group keys in first-appearance order
func (s *Summary) GroupKeys() []GroupKey {
	return s.groups.Keys()
}

// Groups returns a plain copy of the subtotal mapping
func (s *Summary) Groups() map[GroupKey]decimal.Decimal {
	out := make(map[GroupKey]decimal.Decimal, s.groups.Len())
	s.groups.Range(func(k GroupKey, v decimal.Decimal) bool {
		out[k] = v
		return true
	})
	return out
}

// Len returns the number of line items summarized
func (s *Summary) Len() int {
	return len(s.Items)
}
