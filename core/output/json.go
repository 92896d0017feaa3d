package output

import (
	"encoding/json"
	"io"

	"shipping-cost/core/calculator"
	"shipping-cost/core/location"
	"shipping-cost/core/snapshot"
	"shipping-cost/core/types"
)

// JSONFormatter renders indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format implements Formatter
func (f *JSONFormatter) Format() Format { return FormatJSON }

// RenderQuote implements Formatter
func (f *JSONFormatter) RenderQuote(w io.Writer, res *types.Result) error {
	return encode(w, res)
}

// RenderOriginQuotes implements Formatter
func (f *JSONFormatter) RenderOriginQuotes(w io.Writer, quotes []calculator.OriginQuote) error {
	return encode(w, map[string]interface{}{"quotes": quotes})
}

// RenderDestinations implements Formatter
func (f *JSONFormatter) RenderDestinations(w io.Writer, destinations []types.Destination) error {
	if destinations == nil {
		destinations = []types.Destination{}
	}
	return encode(w, map[string]interface{}{
		"destinations": destinations,
		"count":        len(destinations),
	})
}

// RenderComparison implements Formatter
func (f *JSONFormatter) RenderComparison(w io.Writer, cmp *location.Comparison) error {
	return encode(w, cmp)
}

// RenderSnapshot implements Formatter
func (f *JSONFormatter) RenderSnapshot(w io.Writer, info snapshot.Info) error {
	return encode(w, info)
}

// RenderError implements Formatter
func (f *JSONFormatter) RenderError(w io.Writer, err error) error {
	return encode(w, map[string]interface{}{"error": NewErrorBody(err)})
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
