// Package cmd - services command
package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aws-cost/core/ui"
	"aws-cost/internal/config"
)

var servicesFilter string

// servicesCmd lists the services in the pricing catalog
var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List services available in the pricing catalog",
	Long: `List every service code the Price List API currently publishes.

Examples:
  aws-cost services
  aws-cost services --filter Amazon`,
	Args: cobra.NoArgs,
	RunE: runServices,
}

func init() {
	servicesCmd.Flags().StringVar(&servicesFilter, "filter", "", "only show codes containing this substring")
}

func runServices(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()
	w := ui.NewWriter(os.Stdout, noColor)

	index, err := loadCatalog(ctx, w, cfg.Pricing.Endpoint)
	if err != nil {
		return err
	}

	codes := index.ServiceCodes()
	shown := 0

	w.Println("")
	for _, code := range codes {
		if servicesFilter != "" && !strings.Contains(strings.ToLower(code), strings.ToLower(servicesFilter)) {
			continue
		}
		w.Println("  %s", code)
		shown++
	}

	w.Println("")
	if servicesFilter != "" {
		w.Info("%d of %d services match %q", shown, len(codes), servicesFilter)
	} else {
		w.Info("%d services", len(codes))
	}
	return nil
}
