package offers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"aws-cost/core/catalog"
	"aws-cost/core/determinism"
	"aws-cost/internal/errors"
)

// Source is the fetch boundary: anything that can produce a regional
// pricing document for a service.
type Source interface {
	FetchRegionalPricing(ctx context.Context, serviceCode, region string) (*RegionPricingDocument, error)
}

// CatalogLookup resolves a service code to its catalog entry
type CatalogLookup interface {
	Lookup(serviceCode string) (catalog.ServiceIndexEntry, error)
}

// FetcherConfig configures a Fetcher
type FetcherConfig struct {
	// Endpoint is the bulk API base URL, used to resolve relative URLs
	Endpoint string

	// Timeout bounds each request
	Timeout time.Duration

	// Currency selects which published price to keep (default USD)
	Currency string

	// Logger receives debug output; nil means silent
	Logger *zap.Logger
}

// Fetcher retrieves and normalizes regional pricing documents
type Fetcher struct {
	index      CatalogLookup
	httpClient *http.Client
	endpoint   string
	currency   string
	logger     *zap.Logger
}

// NewFetcher creates a fetcher over a loaded catalog index
func NewFetcher(index CatalogLookup, cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		index:      index,
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		currency:   currency,
		logger:     logger,
	}
}

// regionIndex is the wire shape of a service's region index file
type regionIndex struct {
	FormatVersion   string                 `json:"formatVersion"`
	PublicationDate string                 `json:"publicationDate"`
	Regions         map[string]regionOffer `json:"regions"`
}

type regionOffer struct {
	RegionCode        string `json:"regionCode"`
	CurrentVersionURL string `json:"currentVersionUrl"`
}

// offerFile is the wire shape of a regional offer file. Terms are kept
// generic (model name → product sku → term code → term) so every pricing
// model a document publishes survives normalization.
type offerFile struct {
	FormatVersion   string                                     `json:"formatVersion"`
	Version         string                                     `json:"version"`
	PublicationDate string                                     `json:"publicationDate"`
	Products        map[string]offerProduct                    `json:"products"`
	Terms           map[string]map[string]map[string]offerTerm `json:"terms"`
}

type offerProduct struct {
	SKU           string            `json:"sku"`
	ProductFamily string            `json:"productFamily"`
	Attributes    map[string]string `json:"attributes"`
}

type offerTerm struct {
	OfferTermCode   string                    `json:"offerTermCode"`
	SKU             string                    `json:"sku"`
	EffectiveDate   string                    `json:"effectiveDate"`
	PriceDimensions map[string]priceDimension `json:"priceDimensions"`
	TermAttributes  map[string]string         `json:"termAttributes"`
}

type priceDimension struct {
	RateCode     string            `json:"rateCode"`
	Description  string            `json:"description"`
	BeginRange   string            `json:"beginRange"`
	EndRange     string            `json:"endRange"`
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
	AppliesTo    []string          `json:"appliesTo"`
}

// FetchRegionalPricing retrieves one (service, region) pricing document.
//
// The service's catalog entry locates its region index; the region's entry
// in turn locates the offer file. Malformed records are dropped during
// normalization; a document with nothing left is an empty-result failure,
// not a fetch failure.
func (f *Fetcher) FetchRegionalPricing(ctx context.Context, serviceCode, region string) (*RegionPricingDocument, error) {
	entry, err := f.index.Lookup(serviceCode)
	if err != nil {
		return nil, err
	}

	var index regionIndex
	indexURL := f.resolveURL(entry.DetailURL)
	if err := f.getJSON(ctx, indexURL, &index); err != nil {
		return nil, err
	}

	offer, ok := index.Regions[region]
	if !ok {
		// Some older offer files key regions by location name.
		offer, ok = index.Regions[catalog.LocationFor(region)]
		if !ok {
			return nil, errors.EmptyResult("service has no offers in region").
				WithContext("service", serviceCode).
				WithContext("region", region)
		}
	}

	var file offerFile
	offerURL := f.resolveURL(offer.CurrentVersionURL)
	if err := f.getJSON(ctx, offerURL, &file); err != nil {
		return nil, err
	}

	records := f.normalize(&file, serviceCode)
	if len(records) == 0 {
		return nil, errors.EmptyResult("pricing document has no usable offers").
			WithContext("service", serviceCode).
			WithContext("region", region)
	}

	f.logger.Debug("fetched regional pricing",
		zap.String("service", serviceCode),
		zap.String("region", region),
		zap.Int("offers", len(records)),
		zap.String("version", file.Version))

	return &RegionPricingDocument{
		ServiceCode: serviceCode,
		Region:      region,
		Offers:      records,
		Version:     file.Version,
		FetchedAt:   time.Now(),
	}, nil
}

// normalize flattens an offer file into records, one per price dimension,
// in canonical order: pricing model, then product sku, then term code, then
// dimension key, each sorted. JSON object order is not observable after
// decoding, so the canonical order is what "document order" means here; it
// is reproducible for any two fetches of the same document.
func (f *Fetcher) normalize(file *offerFile, serviceCode string) []OfferRecord {
	var records []OfferRecord
	var dropped int
	seen := make(map[string]struct{})

	for _, model := range determinism.SortedStringKeys(file.Terms) {
		if model == "" {
			continue
		}
		byProduct := file.Terms[model]
		for _, productSKU := range determinism.SortedStringKeys(byProduct) {
			product := file.Products[productSKU]
			for _, termCode := range determinism.SortedStringKeys(byProduct[productSKU]) {
				term := byProduct[productSKU][termCode]
				for _, dimKey := range determinism.SortedStringKeys(term.PriceDimensions) {
					dim := term.PriceDimensions[dimKey]

					rateCode := dim.RateCode
					if rateCode == "" {
						rateCode = dimKey
					}
					if rateCode == "" || productSKU == "" {
						dropped++
						continue
					}

					priceStr, ok := dim.PricePerUnit[f.currency]
					if !ok {
						dropped++
						continue
					}
					price, err := decimal.NewFromString(priceStr)
					if err != nil || price.IsNegative() {
						dropped++
						continue
					}

					if _, dup := seen[rateCode]; dup {
						dropped++
						continue
					}
					seen[rateCode] = struct{}{}

					records = append(records, OfferRecord{
						SKU:               rateCode,
						ProductSKU:        productSKU,
						ProductFamily:     product.ProductFamily,
						ProductAttributes: product.Attributes,
						PricingModel:      PricingModel(model),
						Description:       dim.Description,
						Unit:              dim.Unit,
						PricePerUnit:      price,
						Currency:          f.currency,
					})
				}
			}
		}
	}

	if dropped > 0 {
		f.logger.Debug("dropped malformed offer records",
			zap.String("service", serviceCode),
			zap.Int("dropped", dropped))
	}

	return records
}

// getJSON GETs a URL and decodes the body
func (f *Fetcher) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Network("failed to create pricing request", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return errors.Network("failed to fetch pricing document", err).WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return errors.Newf(errors.TypeNetwork, "pricing request returned status %d", resp.StatusCode).
			WithContext("url", url)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Network("failed to decode pricing document", err).WithContext("url", url)
	}
	return nil
}

// resolveURL joins offer-index URLs, which are usually endpoint-relative
func (f *Fetcher) resolveURL(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return f.endpoint + url
}

// priceListEntry is the shape of one GetProducts price-list item: a single
// product with the same terms structure the bulk offer files use.
type priceListEntry struct {
	Product     offerProduct                               `json:"product"`
	Terms       map[string]map[string]map[string]offerTerm `json:"terms"`
	ServiceCode string                                     `json:"serviceCode"`
	Version     string                                     `json:"version"`
}

// NormalizePriceListItem parses one raw GetProducts price-list item into
// records, reusing the bulk-file normalization. Used by the live lookup path.
func NormalizePriceListItem(data []byte, serviceCode, currency string) ([]OfferRecord, error) {
	var entry priceListEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Parsing("failed to decode price list item", err)
	}
	if currency == "" {
		currency = "USD"
	}
	file := &offerFile{
		Products: map[string]offerProduct{entry.Product.SKU: entry.Product},
		Terms:    entry.Terms,
	}
	f := &Fetcher{currency: currency, logger: zap.NewNop()}
	return f.normalize(file, serviceCode), nil
}
