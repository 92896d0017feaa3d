package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
	compareCity string
)

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "Search and inspect zone table destinations",
}

var destinationsSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Find destinations by city or postal code",
	Long: `List destinations whose city or postal code contains the term
(case-insensitive). Every match is listed unless --limit is set. Without
a term the first 50 destinations are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := formatter()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		return f.RenderDestinations(os.Stdout, snap.Locations.Search(strings.Join(args, " "), searchLimit))
	},
}

var destinationsCompareCmd = &cobra.Command{
	Use:   "compare <postal-code>",
	Short: "Compare origins for a destination",
	Long: `Show every origin's distance and minimum charge for a destination,
marking the cheapest and the closest origin.

Example:
  shipping-cost destinations compare 40191 --city Bandung`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := formatter()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		cmp, err := snap.Locations.Compare(compareCity, args[0], snap.Catalog.Origins())
		if err != nil {
			return err
		}
		return f.RenderComparison(os.Stdout, cmp)
	},
}

func init() {
	destinationsSearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results (0 lists every match)")
	destinationsCompareCmd.Flags().StringVar(&compareCity, "city", "", "destination city (empty matches any city)")

	destinationsCmd.AddCommand(destinationsSearchCmd)
	destinationsCmd.AddCommand(destinationsCompareCmd)
}
