package manifest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"aws-cost/core/cost"
	"aws-cost/core/offers"
	"aws-cost/core/options"
	"aws-cost/internal/errors"
)

// Resolver prices manifest items against a pricing source
type Resolver struct {
	source offers.Source
	logger *zap.Logger
}

// NewResolver creates a resolver; a nil logger means silent
func NewResolver(source offers.Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve prices every item and returns line items in manifest order.
// Each service's document is fetched once per run. Resolution is all or
// nothing: any unmatched item fails the whole manifest.
func (r *Resolver) Resolve(ctx context.Context, m *Manifest) ([]cost.LineItem, error) {
	docs := make(map[string]*offers.RegionPricingDocument)
	items := make([]cost.LineItem, 0, len(m.Items))

	for i := range m.Items {
		it := &m.Items[i]

		doc, ok := docs[it.Service]
		if !ok {
			var err error
			doc, err = r.source.FetchRegionalPricing(ctx, it.Service, m.Region)
			if err != nil {
				return nil, err
			}
			docs[it.Service] = doc
		}

		rec, err := r.match(doc, it)
		if err != nil {
			return nil, err
		}

		label := it.Label
		if label == "" {
			label = options.Label(*rec)
		}

		line := cost.NewLineItem(cost.LineItem{
			Service:      it.Service,
			PricingModel: rec.PricingModel.String(),
			SKU:          rec.SKU,
			Family:       rec.ProductFamily,
			Label:        label,
			Region:       m.Region,
			Unit:         rec.Unit,
			UnitPrice:    rec.PricePerUnit,
			Quantity:     it.Quantity,
			Currency:     rec.Currency,
		})
		items = append(items, line)

		r.logger.Debug("manifest item resolved",
			zap.String("service", it.Service),
			zap.String("sku", line.SKU),
			zap.Int("line", it.SourceLine))
	}

	return items, nil
}

// match finds the offer record an item refers to. A sku matches by rate
// code across the whole document; otherwise the item's label is matched
// against the options built for its model and family.
func (r *Resolver) match(doc *offers.RegionPricingDocument, it *Item) (*offers.OfferRecord, error) {
	if it.SKU != "" {
		for i := range doc.Offers {
			if doc.Offers[i].SKU == it.SKU {
				return &doc.Offers[i], nil
			}
		}
		return nil, errors.NotFound("offer", it.SKU).
			WithContext("service", it.Service).
			WithContext("line", it.SourceLine)
	}

	model := offers.PricingModel(it.Model)
	for _, opt := range options.BuildOptions(doc, model, it.Family) {
		if opt.Label != it.Label {
			continue
		}
		for i := range doc.Offers {
			if doc.Offers[i].SKU == opt.SKU {
				return &doc.Offers[i], nil
			}
		}
	}

	return nil, errors.NotFound("option",
		fmt.Sprintf("%s/%s/%s", it.Service, it.Family, it.Label)).
		WithContext("line", it.SourceLine)
}
