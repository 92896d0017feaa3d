// Package ingestion - Raw table reading and cell parsing
package ingestion

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"shipping-cost/internal/errors"
)

// RawTable is a delimited export before normalization
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Column returns the index of a canonical header name, or -1
func (t *RawTable) Column(name string) int {
	name = CanonicalHeader(name)
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ReadCSV reads a delimited table. The first row is the header; header names
// are canonicalized. Rows may have any number of cells.
func ReadCSV(name string, r io.Reader, delimiter string) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	if delimiter != "" {
		d, _ := utf8.DecodeRuneInString(delimiter)
		reader.Comma = d
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Parsing("failed to read "+name, err)
	}
	if len(records) == 0 {
		return nil, errors.Newf(errors.TypeParsing, "%s is empty", name)
	}

	table := &RawTable{Name: name, Header: make([]string, len(records[0]))}
	for i, h := range records[0] {
		table.Header[i] = CanonicalHeader(h)
	}
	for _, row := range records[1:] {
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadCSVFile reads a delimited table from disk
func ReadCSVFile(path, delimiter string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to open "+path, err)
	}
	defer f.Close()
	return ReadCSV(path, f, delimiter)
}

// CanonicalHeader trims, lower-cases and replaces spaces and dashes with
// underscores ("Min Charge Kopo" -> "min_charge_kopo").
func CanonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return h
}

var (
	thousandsPattern = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)
	zonePattern      = regexp.MustCompile(`(?i)^zone\s*\d+$`)
)

// ParseAmount parses a money cell. It accepts an "Rp" prefix and "." or ","
// thousands separators ("Rp 150.000"). Empty cells are zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(strings.TrimLeft(s[2:], "."))
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	if thousandsPattern.MatchString(s) {
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	}
	return parseNumber(s)
}

// ParseDistance parses a distance cell in km. "12,5" and "12.5" are equal.
// Empty cells are zero.
func ParseDistance(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "km"), "KM")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	return parseNumber(strings.Replace(s, ",", ".", 1))
}

// IsZoneLabel reports whether a cell holds a zone tag ("ZONE 1")
func IsZoneLabel(s string) bool {
	return zonePattern.MatchString(strings.TrimSpace(s))
}

func parseNumber(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Parsing("not a number: "+s, err)
	}
	return d, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
