// Package catalog loads the AWS Price List service catalog.
// The root offer index maps every priceable service code to the URL of its
// per-region pricing documents.
package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"aws-cost/core/determinism"
	"aws-cost/internal/errors"
)

// IndexPath is the root offer index, relative to the bulk API endpoint.
const IndexPath = "/offers/v1.0/aws/index.json"

// ServiceIndexEntry points at one service's pricing documents.
// Entries are immutable once the catalog is loaded.
type ServiceIndexEntry struct {
	// ServiceCode is the offer code, e.g. "AmazonEC2"
	ServiceCode string `json:"service_code"`

	// DetailURL locates the service's region index (relative to the endpoint)
	DetailURL string `json:"detail_url"`
}

// Index is the loaded service catalog
type Index struct {
	entries map[string]ServiceIndexEntry
	codes   []string
}

// Lookup returns the entry for a service code
func (i *Index) Lookup(serviceCode string) (ServiceIndexEntry, error) {
	entry, ok := i.entries[serviceCode]
	if !ok {
		return ServiceIndexEntry{}, errors.NotFound("service", serviceCode)
	}
	return entry, nil
}

// ServiceCodes returns all service codes in sorted order
func (i *Index) ServiceCodes() []string {
	codes := make([]string, len(i.codes))
	copy(codes, i.codes)
	return codes
}

// Len returns the number of services in the catalog
func (i *Index) Len() int {
	return len(i.entries)
}

// NewIndex builds an index from entries. Entries without a service code
// are ignored.
func NewIndex(entries []ServiceIndexEntry) *Index {
	byCode := make(map[string]ServiceIndexEntry, len(entries))
	for _, e := range entries {
		if e.ServiceCode == "" {
			continue
		}
		byCode[e.ServiceCode] = e
	}
	return &Index{
		entries: byCode,
		codes:   determinism.SortedStringKeys(byCode),
	}
}

// ClientConfig configures the catalog client
type ClientConfig struct {
	// Endpoint is the bulk API base URL
	Endpoint string

	// Timeout bounds the index request
	Timeout time.Duration

	// Logger receives debug output; nil means silent
	Logger *zap.Logger
}

// Client fetches the root offer index
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *zap.Logger
}

// NewClient creates a catalog client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		logger:     logger,
	}
}

// Endpoint returns the configured base URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// offerIndex is the wire shape of the root index file
type offerIndex struct {
	FormatVersion   string                `json:"formatVersion"`
	Disclaimer      string                `json:"disclaimer"`
	PublicationDate string                `json:"publicationDate"`
	Offers          map[string]offerEntry `json:"offers"`
}

type offerEntry struct {
	OfferCode             string `json:"offerCode"`
	CurrentVersionURL     string `json:"currentVersionUrl"`
	CurrentRegionIndexURL string `json:"currentRegionIndexUrl"`
}

// LoadCatalog performs one retrieval of the root offer index.
// It does not retry and does not cache; callers own both decisions.
func (c *Client) LoadCatalog(ctx context.Context) (*Index, error) {
	url := c.endpoint + IndexPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Network("failed to create catalog request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Network("failed to fetch service catalog", err).WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeNetwork, "catalog request returned status %d", resp.StatusCode).
			WithContext("url", url)
	}

	var index offerIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, errors.Network("failed to decode service catalog", err).WithContext("url", url)
	}

	if len(index.Offers) == 0 {
		return nil, errors.New(errors.TypeNetwork, "service catalog contained no offers").
			WithContext("url", url)
	}

	entries := make([]ServiceIndexEntry, 0, len(index.Offers))
	for code, offer := range index.Offers {
		detail := offer.CurrentRegionIndexURL
		if detail == "" {
			detail = offer.CurrentVersionURL
		}
		if detail == "" {
			c.logger.Debug("skipping catalog entry without detail url", zap.String("service", code))
			continue
		}
		entries = append(entries, ServiceIndexEntry{ServiceCode: code, DetailURL: detail})
	}

	c.logger.Debug("loaded service catalog",
		zap.Int("services", len(entries)),
		zap.String("published", index.PublicationDate))

	return NewIndex(entries), nil
}
