// Package cmd - regions command
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"aws-cost/core/catalog"
	"aws-cost/core/ui"
)

// regionsCmd lists the selectable regions
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List selectable regions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := ui.NewWriter(os.Stdout, noColor)

		w.Println("")
		table := w.NewTable("Code", "Location")
		for _, r := range catalog.Regions() {
			table.AddRow(r.Code, r.Location)
		}
		table.Render()
	},
}
