package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shipping-cost/core/catalog"
	"shipping-cost/core/output"
	"shipping-cost/core/ui"
	"shipping-cost/internal/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Rate catalog management",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a rate catalog file",
	Long: `Decode a .hcl or .json rate catalog and run the catalog checks:
model, origin count and free radii, the standard service, zone policy,
item rates and installation rates.

Without a path the configured catalog is validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogValidate,
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	path := config.Get().Catalog.Path
	if len(args) > 0 {
		path = args[0]
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	out := ui.NewWriter(os.Stdout, noColor)
	out.Success("%s is valid", path)
	out.Println("")

	table := out.NewTable("Property", "Value")
	table.AddRow("Model", string(cat.Model))
	table.AddRow("Currency", string(cat.Currency))
	table.AddRow("Privileged zone", string(cat.PrivilegedZone))
	table.AddRow("Fallback zone", string(cat.FallbackZone))
	table.Render()

	out.Println("")
	out.SubHeader("Origins")
	origins := out.NewTable("ID", "Name", "Free km", "Distance column", "Min charge column")
	for _, o := range cat.Origins() {
		origins.AddRow(string(o.ID), o.Name, o.FreeKm.String(), o.DistanceColumn, o.MinChargeColumn)
	}
	origins.Render()

	out.Println("")
	out.SubHeader("Services")
	services := out.NewTable("Type", "Label", "Fee", "Flags")
	for _, s := range cat.Services() {
		var flags []string
		if s.Restricted {
			flags = append(flags, "restricted")
		}
		if s.RequiresRate {
			flags = append(flags, "requires rate")
		}
		if s.Installation {
			flags = append(flags, "installation")
		}
		services.AddRow(string(s.Type), s.Label, output.FormatMoney(s.Fee, cat.Currency), strings.Join(flags, ", "))
	}
	services.Render()

	out.Println("")
	out.Info("%d item categories", len(cat.Items()))
	return nil
}
