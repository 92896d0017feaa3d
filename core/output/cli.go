package output

import (
	"fmt"
	"io"

	"shipping-cost/core/calculator"
	"shipping-cost/core/location"
	"shipping-cost/core/snapshot"
	"shipping-cost/core/types"
	"shipping-cost/core/ui"
)

// CLIFormatter renders terminal tables
type CLIFormatter struct {
	noColor bool
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{noColor: noColor}
}

// Format implements Formatter
func (f *CLIFormatter) Format() Format { return FormatCLI }

// RenderQuote implements Formatter
func (f *CLIFormatter) RenderQuote(w io.Writer, res *types.Result) error {
	out := ui.NewWriter(w, f.noColor)

	summary := out.NewQuoteSummary()
	summary.Title = fmt.Sprintf("%s → %s %s", res.Origin, res.City, res.PostalCode)
	summary.Total = FormatMoney(res.FinalCost, res.Currency)
	summary.Method = string(res.Method)
	summary.Distance = res.Distance.String() + " km, " + string(res.Zone)
	summary.MinCharge = FormatMoney(res.MinCharge, res.Currency)
	if res.MinCharge.IsZero() {
		summary.MinCharge = "none"
	}
	summary.Free = res.Method == types.MethodFree
	summary.Render()

	out.Println("")
	out.SubHeader("Breakdown")
	table := out.NewTable("Component", "Unit Price", "Qty", "Subtotal")
	for _, line := range res.Breakdown {
		table.AddRow(line.Component,
			FormatMoney(line.UnitPrice, res.Currency),
			line.Quantity.String(),
			FormatMoney(line.Subtotal, res.Currency))
	}
	table.Render()

	out.Println("")
	out.Println("%s", out.Color(ui.Dim, fmt.Sprintf("Service %s, %s model, snapshot %s", res.Service, res.Model, snapshotLabel(res.SnapshotID))))
	return nil
}

// RenderOriginQuotes implements Formatter
func (f *CLIFormatter) RenderOriginQuotes(w io.Writer, quotes []calculator.OriginQuote) error {
	out := ui.NewWriter(w, f.noColor)
	if len(quotes) == 0 {
		out.Warning("no origins to compare")
		return nil
	}

	first := quotes[0].Result
	out.Header(fmt.Sprintf("Quotes to %s %s", first.City, first.PostalCode))
	table := out.NewTable("Origin", "Distance", "Min Charge", "Method", "Cost", "")
	for _, q := range quotes {
		badge := ""
		if q.Cheapest {
			badge = out.Color(ui.Green, "cheapest")
		}
		table.AddRow(q.Origin.Name,
			q.Result.Distance.String()+" km",
			FormatMoney(q.Result.MinCharge, q.Result.Currency),
			string(q.Result.Method),
			FormatMoney(q.Result.FinalCost, q.Result.Currency),
			badge)
	}
	table.Render()
	return nil
}

// RenderDestinations implements Formatter
func (f *CLIFormatter) RenderDestinations(w io.Writer, destinations []types.Destination) error {
	out := ui.NewWriter(w, f.noColor)
	if len(destinations) == 0 {
		out.Warning("no matching destinations")
		return nil
	}

	table := out.NewTable("City", "Postal Code", "Zone")
	for _, d := range destinations {
		table.AddRow(d.City, d.PostalCode, string(d.Zone))
	}
	table.Render()
	out.Println("")
	out.Info("%d destinations", len(destinations))
	return nil
}

// RenderComparison implements Formatter
func (f *CLIFormatter) RenderComparison(w io.Writer, cmp *location.Comparison) error {
	out := ui.NewWriter(w, f.noColor)
	out.Header(fmt.Sprintf("%s %s (%s)", cmp.Destination.City, cmp.Destination.PostalCode, cmp.Zone))

	table := out.NewTable("Origin", "Distance", "Min Charge", "")
	for _, opt := range cmp.Options {
		var badges string
		if opt.Cheapest {
			badges += out.Color(ui.Green, "cheapest ")
		}
		if opt.Closest {
			badges += out.Color(ui.Cyan, "closest")
		}
		minCharge := FormatMoney(opt.MinCharge, types.CurrencyIDR)
		if opt.MinCharge.IsZero() {
			minCharge = "-"
		}
		table.AddRow(opt.Origin.Name, opt.Distance.String()+" km", minCharge, badges)
	}
	table.Render()
	return nil
}

// RenderSnapshot implements Formatter
func (f *CLIFormatter) RenderSnapshot(w io.Writer, info snapshot.Info) error {
	out := ui.NewWriter(w, f.noColor)
	out.Header("Snapshot " + string(info.ID))

	table := out.NewTable("Property", "Value")
	table.AddRow("Source", info.Source)
	table.AddRow("Loaded", info.LoadedAt.Format("2006-01-02 15:04:05 MST"))
	table.AddRow("Model", string(info.Model))
	table.AddRow("Currency", string(info.Currency))
	table.AddRow("Origins", fmt.Sprint(info.Catalog.Origins))
	table.AddRow("Services", fmt.Sprintf("%d (%d restricted)", info.Catalog.Services, info.Catalog.RestrictedServices))
	table.AddRow("Items", fmt.Sprint(info.Catalog.Items))
	table.AddRow("Destinations", fmt.Sprint(info.Destinations))
	table.AddRow("Content hash", info.ContentHash)
	table.Render()

	if len(info.Duplicates) > 0 {
		out.Println("")
		out.Warning("%d duplicate destinations (first record wins)", len(info.Duplicates))
	}
	for _, warning := range info.Warnings {
		out.Warning("%s", warning)
	}
	return nil
}

// RenderError implements Formatter
func (f *CLIFormatter) RenderError(w io.Writer, err error) error {
	out := ui.NewWriter(w, f.noColor)
	body := NewErrorBody(err)
	out.Error("%s: %s", body.Type, body.Message)
	if body.Item != "" {
		out.Println("  item: %s", body.Item)
	}
	return nil
}

func snapshotLabel(id string) string {
	if id == "" {
		return "none"
	}
	return id
}
