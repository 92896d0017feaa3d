// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-cost/core/calculator"
	"shipping-cost/core/location"
	"shipping-cost/core/snapshot"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// RenderQuote renders a single computed quote
	RenderQuote(w io.Writer, result *types.Result) error

	// RenderOriginQuotes renders a quote from every origin, cheapest first
	RenderOriginQuotes(w io.Writer, quotes []calculator.OriginQuote) error

	// RenderDestinations renders destination search results
	RenderDestinations(w io.Writer, destinations []types.Destination) error

	// RenderComparison renders per-origin distance and minimum charge
	RenderComparison(w io.Writer, cmp *location.Comparison) error

	// RenderSnapshot renders snapshot information
	RenderSnapshot(w io.Writer, info snapshot.Info) error

	// RenderError renders a rejected calculation or failed command
	RenderError(w io.Writer, err error) error
}

// Options configures formatters
type Options struct {
	NoColor bool
}

// New returns the formatter for a format name
func New(format string, opts Options) (Formatter, error) {
	switch Format(strings.ToLower(format)) {
	case "", FormatCLI:
		return NewCLIFormatter(opts.NoColor), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q (use cli or json)", format)
	}
}

// ErrorBody is the serialized form of an error
type ErrorBody struct {
	Type    errors.Type            `json:"type"`
	Message string                 `json:"message"`
	Item    string                 `json:"item,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// NewErrorBody converts any error into its serialized form. Errors from
// outside the taxonomy are reported as internal.
func NewErrorBody(err error) ErrorBody {
	if e, ok := errors.As(err); ok {
		return ErrorBody{Type: e.Type, Message: e.Message, Item: e.Item, Context: e.Context}
	}
	return ErrorBody{Type: errors.TypeInternal, Message: err.Error()}
}

// FormatMoney renders an amount rounded to whole units with "." thousands
// separators, "Rp 225.000" for rupiah.
func FormatMoney(amount decimal.Decimal, currency types.Currency) string {
	s := amount.Round(0).Abs().StringFixed(0)

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.Round(0).IsNegative() {
		sign = "-"
	}
	prefix := string(currency) + " "
	if currency == types.CurrencyIDR || currency == "" {
		prefix = "Rp "
	}
	return sign + prefix + b.String()
}
