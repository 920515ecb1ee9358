// Package cmd - calc command
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aws-cost/core/catalog"
	"aws-cost/core/cost"
	"aws-cost/core/manifest"
	"aws-cost/core/offers"
	"aws-cost/core/report"
	"aws-cost/core/session"
	"aws-cost/core/ui"
	"aws-cost/internal/config"
	"aws-cost/internal/logging"
)

var (
	calcRegion    string
	calcManifest  string
	calcFormat    string
	calcOutputDir string
	calcEndpoint  string
	calcNoCache   bool
)

// calcCmd represents the calc command
var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Build a cost estimate from live pricing data",
	Long: `Build a cost estimate from the public AWS Price List API.

Without flags, calc runs an interactive walk: pick a region, a service, a
pricing model, a product family and an option, then enter a quantity. The
walk repeats until you finish, and every confirmed quantity becomes a
line item in the summary.

With --manifest, calc prices the items of an HCL manifest instead and
renders the same summary without prompting.

Examples:
  aws-cost calc
  aws-cost calc --region eu-west-1
  aws-cost calc --manifest estimate.hcl
  aws-cost calc --manifest estimate.hcl --format json
  aws-cost calc --output ./reports --format markdown`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVarP(&calcRegion, "region", "r", "", "preselect a region and skip the region menu")
	calcCmd.Flags().StringVarP(&calcManifest, "manifest", "m", "", "price an HCL manifest instead of prompting")
	calcCmd.Flags().StringVarP(&calcFormat, "format", "f", "table", "output format (table, json, markdown)")
	calcCmd.Flags().StringVarP(&calcOutputDir, "output", "o", "", "also save the report under this directory")
	calcCmd.Flags().StringVar(&calcEndpoint, "endpoint", "", "pricing endpoint override")
	calcCmd.Flags().BoolVar(&calcNoCache, "no-cache", false, "disable the in-memory document cache")
}

func runCalc(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	w := ui.NewWriter(os.Stdout, noColor)
	if verbose {
		w.SetVerbosity(2)
	}

	endpoint := cfg.Pricing.Endpoint
	if calcEndpoint != "" {
		endpoint = calcEndpoint
	}

	index, err := loadCatalog(ctx, w, endpoint)
	if err != nil {
		return err
	}
	w.Debug("catalog loaded with %d services", index.Len())

	source := newSource(index, endpoint, cfg)

	var (
		region string
		items  []cost.LineItem
	)
	if calcManifest != "" {
		region, items, err = resolveManifest(ctx, w, source)
		if err != nil {
			return err
		}
	} else {
		region, items, err = runInteractive(ctx, w, index, source, cfg)
		if err != nil && len(items) == 0 {
			return err
		}
		if err != nil {
			w.Warning("Session ended early: %v", err)
		}
	}

	result := report.New(region, items)

	if calcFormat == string(report.FormatTable) {
		displaySummary(w, result)
	} else {
		formatter, ok := report.Lookup(report.Format(calcFormat))
		if !ok {
			return fmt.Errorf("unknown format %q (use one of %v)", calcFormat, report.Formats())
		}
		if err := formatter.Render(os.Stdout, result); err != nil {
			return err
		}
	}

	if calcOutputDir != "" {
		path, err := report.Save(result, calcOutputDir, report.Format(calcFormat))
		if err != nil {
			return err
		}
		w.Success("Report saved to %s", path)
	}

	logging.Sync()
	return nil
}

// loadCatalog downloads the service index with a spinner
func loadCatalog(ctx context.Context, w *ui.Writer, endpoint string) (*catalog.Index, error) {
	cfg := config.Get()
	client := catalog.NewClient(catalog.ClientConfig{
		Endpoint: endpoint,
		Timeout:  cfg.Pricing.RequestTimeout(),
		Logger:   logging.Named("catalog"),
	})

	spinner := w.NewSpinner("Loading service catalog")
	spinner.Start()
	index, err := client.LoadCatalog(ctx)
	spinner.Stop(err == nil)
	return index, err
}

// newSource builds the pricing source, cached unless disabled
func newSource(index *catalog.Index, endpoint string, cfg *config.Config) offers.Source {
	fetcher := offers.NewFetcher(index, offers.FetcherConfig{
		Endpoint: endpoint,
		Timeout:  cfg.Pricing.RequestTimeout(),
		Currency: cfg.Pricing.Currency,
		Logger:   logging.Named("offers"),
	})

	if calcNoCache || !cfg.Cache.Enabled {
		return fetcher
	}
	return offers.NewCache(fetcher, cfg.Cache.TTL())
}

func runInteractive(ctx context.Context, w *ui.Writer, index *catalog.Index, source offers.Source, cfg *config.Config) (string, []cost.LineItem, error) {
	region := calcRegion
	if region == "" {
		region = cfg.AWS.DefaultRegion
	}

	sess := session.New(session.Config{
		Services: index,
		Source:   &spinnerSource{inner: source, w: w},
		Prompter: ui.NewPrompt(w, os.Stdin),
		Region:   region,
		Currency: cfg.Pricing.Currency,
		Logger:   logging.Named("session"),
	})

	items, err := sess.Run(ctx)
	return sess.Region(), items, err
}

func resolveManifest(ctx context.Context, w *ui.Writer, source offers.Source) (string, []cost.LineItem, error) {
	m, err := manifest.Load(calcManifest)
	if err != nil {
		return "", nil, err
	}
	w.Info("Pricing %d manifest items in %s", len(m.Items), m.Region)

	resolver := manifest.NewResolver(&spinnerSource{inner: source, w: w}, logging.Named("manifest"))
	items, err := resolver.Resolve(ctx, m)
	if err != nil {
		return "", nil, err
	}
	return m.Region, items, nil
}

// displaySummary renders the interactive summary view
func displaySummary(w *ui.Writer, result *report.Result) {
	if len(result.Items) == 0 {
		w.Println("")
		w.Info("No line items selected.")
		return
	}

	summary := w.NewCostSummary()
	summary.Region = result.Region
	summary.Currency = result.Currency
	summary.GrandTotal = result.GrandTotal.String()
	summary.Items = len(result.Items)
	for _, g := range result.Groups {
		summary.Groups = append(summary.Groups, ui.GroupTotal{
			Service:  g.Service,
			Model:    g.Model,
			Subtotal: g.Subtotal.String(),
		})
	}
	summary.Render()

	w.Println("")
	w.SubHeader("Line Items")
	table := w.NewTable("Service", "Label", "Quantity", "Unit", "Cost").AlignRight(2, 4)
	for _, item := range result.Items {
		table.AddRow(item.Service, item.Label, item.Quantity.String(), item.Unit, item.Cost.String())
	}
	table.Render()
}

// spinnerSource wraps a source with a fetch spinner so slow offer file
// downloads show progress
type spinnerSource struct {
	inner offers.Source
	w     *ui.Writer
}

func (s *spinnerSource) FetchRegionalPricing(ctx context.Context, serviceCode, region string) (*offers.RegionPricingDocument, error) {
	spinner := s.w.NewSpinner(fmt.Sprintf("Fetching %s pricing for %s", serviceCode, region))
	spinner.Start()
	doc, err := s.inner.FetchRegionalPricing(ctx, serviceCode, region)
	spinner.Stop(err == nil)
	return doc, err
}
