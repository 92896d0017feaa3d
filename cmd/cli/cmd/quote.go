package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shipping-cost/core/types"
	"shipping-cost/internal/app"
	"shipping-cost/internal/config"
	"shipping-cost/internal/errors"
	"shipping-cost/internal/logging"
)

var (
	quoteOrigin  string
	quoteCity    string
	quotePostal  string
	quoteService string
	quoteItems   []string
	quoteCompare bool
)

// quoteCmd computes a delivery quote
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute a delivery quote",
	Long: `Compute the delivery cost of a cart from an origin warehouse to a
destination in the zone table.

Items are given as name=quantity, optionally with a per-line service:
  --item kulkas=1 --item tv=2:lite_install

Examples:
  shipping-cost quote --origin banjaran --postal 40191 --item kulkas=1
  shipping-cost quote --origin kopo --city Bandung --postal 40191 --service nextday --item tv=2
  shipping-cost quote --compare --postal 40191 --item kulkas=1`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteOrigin, "origin", "o", "", "origin warehouse ID")
	quoteCmd.Flags().StringVar(&quoteCity, "city", "", "destination city (empty matches any city)")
	quoteCmd.Flags().StringVarP(&quotePostal, "postal", "p", "", "destination postal code")
	quoteCmd.Flags().StringVarP(&quoteService, "service", "s", string(types.ServiceStandard), "service tier")
	quoteCmd.Flags().StringArrayVarP(&quoteItems, "item", "i", nil, "cart line as name=qty[:service] (repeatable)")
	quoteCmd.Flags().BoolVar(&quoteCompare, "compare", false, "quote from every origin, cheapest first")
	quoteCmd.MarkFlagRequired("postal")
}

func runQuote(cmd *cobra.Command, args []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	if !quoteCompare && req.Origin == "" {
		return errors.Input("--origin is required unless --compare is set")
	}

	f, err := formatter()
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(cmd.Context())
	if err != nil {
		return err
	}
	calc, err := app.NewCalculator(config.Get())
	if err != nil {
		return err
	}

	logging.Debug("computing quote",
		zap.String("snapshot_id", string(snap.ID)),
		zap.String("postal_code", req.PostalCode),
		zap.Bool("compare", quoteCompare))

	if quoteCompare {
		quotes, err := snap.CompareOrigins(calc, req)
		if err != nil {
			return err
		}
		return f.RenderOriginQuotes(os.Stdout, quotes)
	}

	res, err := snap.Quote(calc, req)
	if err != nil {
		return err
	}
	return f.RenderQuote(os.Stdout, res)
}

func buildRequest() (types.Request, error) {
	req := types.Request{
		Origin:     types.OriginID(quoteOrigin),
		City:       quoteCity,
		PostalCode: quotePostal,
		Service:    types.ServiceType(quoteService),
	}
	for _, raw := range quoteItems {
		line, err := parseCartLine(raw)
		if err != nil {
			return types.Request{}, err
		}
		req.Cart = append(req.Cart, line)
	}
	return req, nil
}

// parseCartLine parses "name=qty" or "name=qty:service"
func parseCartLine(raw string) (types.CartLine, error) {
	name, rest, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return types.CartLine{}, errors.Newf(errors.TypeInput, "cart line %q must be name=qty[:service]", raw)
	}

	qtyText, service, _ := strings.Cut(rest, ":")
	qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
	if err != nil {
		return types.CartLine{}, errors.Wrap(errors.TypeInput, fmt.Sprintf("invalid quantity in %q", raw), err).WithItem(name)
	}

	return types.CartLine{
		Item:     name,
		Quantity: qty,
		Service:  types.ServiceType(strings.TrimSpace(service)),
	}, nil
}
