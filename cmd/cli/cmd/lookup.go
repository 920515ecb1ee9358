// Package cmd - lookup command
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	awstypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aws-cost/core/catalog"
	"aws-cost/core/offers"
	"aws-cost/core/options"
	"aws-cost/core/ui"
	"aws-cost/internal/config"
	"aws-cost/internal/logging"
)

var (
	lookupService    string
	lookupRegion     string
	lookupAttributes []string
	lookupLimit      int
)

// lookupCmd queries the authenticated Pricing API for matching offers
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Query the Pricing API for offers matching attribute filters",
	Long: `Query the AWS Pricing API (GetProducts) with term-match filters.

Unlike calc, lookup talks to the authenticated API, so AWS credentials
must be configured. The Pricing API itself is served from us-east-1
regardless of the region being priced.

Examples:
  aws-cost lookup --service AmazonEC2 -a instanceType=t3.micro
  aws-cost lookup --service AmazonRDS --region eu-west-1 -a databaseEngine=PostgreSQL`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupService, "service", "s", "", "service code to query (required)")
	lookupCmd.Flags().StringVarP(&lookupRegion, "region", "r", "", "region whose location is added as a filter")
	lookupCmd.Flags().StringArrayVarP(&lookupAttributes, "attribute", "a", nil, "term-match filter as key=value (repeatable)")
	lookupCmd.Flags().IntVar(&lookupLimit, "limit", 20, "maximum offers to print")
	lookupCmd.MarkFlagRequired("service")
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()
	w := ui.NewWriter(os.Stdout, noColor)
	logger := logging.Named("lookup")

	filters, err := buildFilters()
	if err != nil {
		return err
	}

	// The Pricing API has fixed endpoints; us-east-1 serves all of them.
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1"))
	if err != nil {
		return fmt.Errorf("loading AWS credentials: %w", err)
	}
	client := pricing.NewFromConfig(awsCfg)

	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(lookupService),
		Filters:     filters,
	}

	spinner := w.NewSpinner(fmt.Sprintf("Querying %s offers", lookupService))
	spinner.Start()
	records, err := fetchProducts(ctx, client, input, cfg.Pricing.Currency, logger)
	spinner.Stop(err == nil)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		w.Warning("No offers matched.")
		return nil
	}

	w.Println("")
	table := w.NewTable("Rate Code", "Family", "Label", "Model", "Price", "Unit").AlignRight(4)
	for _, rec := range records {
		table.AddRow(
			rec.SKU,
			rec.ProductFamily,
			options.Label(rec),
			rec.PricingModel.String(),
			rec.PricePerUnit.String(),
			rec.Unit,
		)
	}
	table.Render()

	w.Println("")
	w.Info("%d offers", len(records))
	return nil
}

// buildFilters turns -a key=value flags and the region flag into
// term-match filters
func buildFilters() ([]awstypes.Filter, error) {
	filters := make([]awstypes.Filter, 0, len(lookupAttributes)+1)

	for _, pair := range lookupAttributes {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("attribute filter must be key=value, got %q", pair)
		}
		filters = append(filters, awstypes.Filter{
			Type:  awstypes.FilterTypeTermMatch,
			Field: aws.String(key),
			Value: aws.String(value),
		})
	}

	if lookupRegion != "" {
		if !catalog.IsKnownRegion(lookupRegion) {
			return nil, fmt.Errorf("unknown region %q", lookupRegion)
		}
		filters = append(filters, awstypes.Filter{
			Type:  awstypes.FilterTypeTermMatch,
			Field: aws.String("location"),
			Value: aws.String(catalog.LocationFor(lookupRegion)),
		})
	}

	return filters, nil
}

// fetchProducts pages through GetProducts results and normalizes each
// price list item into offer records, up to the limit
func fetchProducts(ctx context.Context, client *pricing.Client, input *pricing.GetProductsInput, currency string, logger *zap.Logger) ([]offers.OfferRecord, error) {
	var records []offers.OfferRecord

	paginator := pricing.NewGetProductsPaginator(client, input)
	for paginator.HasMorePages() && len(records) < lookupLimit {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying pricing API: %w", err)
		}

		for _, item := range out.PriceList {
			recs, err := offers.NormalizePriceListItem([]byte(item), lookupService, currency)
			if err != nil {
				logger.Debug("skipping unparseable price list item", zap.Error(err))
				continue
			}
			records = append(records, recs...)
			if len(records) >= lookupLimit {
				break
			}
		}
	}

	if len(records) > lookupLimit {
		records = records[:lookupLimit]
	}
	return records, nil
}
