package ingestion

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"shipping-cost/core/catalog"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

const zoneTableCSV = `City;Postal Code;dist_banjaran;dist_kopo;dist_kalimalang;min_charge_banjaran;min_charge_kopo;min_charge_kalimalang;zone_category
Bandung;40191;22;12,5;150;0;Rp 150.000;300,000;ZONE 1
Soreang;40911;8;;140;ZONE 2;;;
Cimahi;40511
Cimahi;40511;30;20;120;1;2;3;
Cimahi;40511;31;21;121;1;2;3;zone 2
`

const itemRatesCSV = `item;name;per_km_rate;handling_fee;rate_standard;rate_trade_in;rate_lite_install
kulkas;Kulkas 2 Pintu;15.000;0;50000;75000;0
tv;TV 43 inch;8000;;30000;;100000
;orphan;1;1;1;1;1
`

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"Rp 150.000", "150000", false},
		{"Rp. 50.000", "50000", false},
		{"150,000", "150000", false},
		{"1.500.000", "1500000", false},
		{"300000", "300000", false},
		{"12.5", "12.5", false},
		{"", "0", false},
		{"-", "0", false},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.err {
				if err == nil {
					t.Errorf("ParseAmount(%q) = %s, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tt.in, err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDistance(t *testing.T) {
	tests := map[string]string{
		"22":   "22",
		"12,5": "12.5",
		"12.5": "12.5",
		"7 km": "7",
		"":     "0",
	}
	for in, want := range tests {
		got, err := ParseDistance(in)
		if err != nil {
			t.Errorf("ParseDistance(%q): %v", in, err)
			continue
		}
		if !got.Equal(dec(want)) {
			t.Errorf("ParseDistance(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseDistance("far"); !errors.IsType(err, errors.TypeParsing) {
		t.Errorf("ParseDistance(far) = %v, want parsing error", err)
	}
}

func TestCanonicalHeader(t *testing.T) {
	tests := map[string]string{
		"Postal Code":        "postal_code",
		" Min-Charge  Kopo ": "min_charge_kopo",
		"\ufeffcity":         "city",
		"zone_category":      "zone_category",
	}
	for in, want := range tests {
		if got := CanonicalHeader(in); got != want {
			t.Errorf("CanonicalHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLocationNormalizer(t *testing.T) {
	raw, err := ReadCSV("distance.csv", strings.NewReader(zoneTableCSV), ";")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	cat := catalog.Default(catalog.ModelDistance)
	batch, err := NewLocationNormalizer(cat.Origins()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(batch.Records) != 4 {
		t.Fatalf("records = %d, want 4", len(batch.Records))
	}
	if batch.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", batch.Skipped)
	}

	bandung := batch.Records[0]
	if bandung.Zone != "ZONE 1" {
		t.Errorf("Bandung zone = %q", bandung.Zone)
	}
	if !bandung.Distances["kopo"].Equal(dec("12.5")) {
		t.Errorf("Bandung kopo distance = %s", bandung.Distances["kopo"])
	}
	if !bandung.MinCharges["kopo"].Equal(dec("150000")) || !bandung.MinCharges["kalimalang"].Equal(dec("300000")) {
		t.Errorf("Bandung min charges = %v", bandung.MinCharges)
	}

	soreang := batch.Records[1]
	if soreang.Zone != "ZONE 2" {
		t.Errorf("zone tag in min charge column not moved: %q", soreang.Zone)
	}
	if !soreang.MinCharges["banjaran"].IsZero() || !soreang.Distances["kopo"].IsZero() {
		t.Errorf("Soreang = %+v", soreang)
	}

	if batch.Records[3].Zone != "ZONE 2" {
		t.Errorf("zone not normalized: %q", batch.Records[3].Zone)
	}

	var dupWarning bool
	for _, w := range batch.Warnings {
		if strings.Contains(w, "duplicate destination Cimahi 40511") {
			dupWarning = true
		}
	}
	if !dupWarning {
		t.Errorf("no duplicate warning in %v", batch.Warnings)
	}
}

func TestLocationNormalizerMissingColumns(t *testing.T) {
	cat := catalog.Default(catalog.ModelDistance)

	raw, _ := ReadCSV("no-postal.csv", strings.NewReader("city;dist_banjaran\nBandung;22\n"), ";")
	if _, err := NewLocationNormalizer(cat.Origins()).Normalize(raw); !errors.IsType(err, errors.TypeParsing) {
		t.Errorf("missing postal column: got %v", err)
	}

	raw, _ = ReadCSV("no-kopo.csv", strings.NewReader("city;postal_code;dist_banjaran\nBandung;40191;22\n"), ";")
	if _, err := NewLocationNormalizer(cat.Origins()).Normalize(raw); !errors.IsType(err, errors.TypeParsing) {
		t.Errorf("missing origin distance column: got %v", err)
	}

	origins := []types.Origin{{ID: "banjaran", DistanceColumn: "dist_banjaran", MinChargeColumn: "min_charge_banjaran"}}
	batch, err := NewLocationNormalizer(origins).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(batch.Records) != 1 || len(batch.Warnings) != 1 {
		t.Errorf("records %d warnings %v", len(batch.Records), batch.Warnings)
	}
}

func TestItemRateNormalizer(t *testing.T) {
	raw, err := ReadCSV("items.csv", strings.NewReader(itemRatesCSV), ";")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	items, warnings, err := NewItemRateNormalizer().Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(items) != 2 || len(warnings) != 1 {
		t.Fatalf("items %d warnings %v", len(items), warnings)
	}

	kulkas := items[0]
	if !kulkas.PerKmRate.Equal(dec("15000")) {
		t.Errorf("per_km_rate = %s", kulkas.PerKmRate)
	}
	if !kulkas.ServiceRates["trade_in"].Equal(dec("75000")) {
		t.Errorf("trade_in rate = %s", kulkas.ServiceRates["trade_in"])
	}
	if _, ok := kulkas.ServiceRates["lite_install"]; ok {
		t.Error("zero rate must leave the service unpriced")
	}
	if !items[1].HandlingFee.IsZero() || len(items[1].ServiceRates) != 2 {
		t.Errorf("tv = %+v", items[1])
	}

	bad, _ := ReadCSV("bad.csv", strings.NewReader("item;per_km_rate\nsofa;cheap\n"), ";")
	_, _, err = NewItemRateNormalizer().Normalize(bad)
	if e, ok := errors.As(err); !ok || e.Item != "sofa" {
		t.Errorf("got %v, want parsing error for sofa", err)
	}
}
