package ingestion

import (
	"database/sql"
	"testing"
)

func ns(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func TestAssembleDestinations(t *testing.T) {
	rows := []destinationRow{
		{City: "Bandung", PostalCode: "40191", Origin: "banjaran", Distance: ns("22"), MinCharge: ns("0"), Zone: ns("zone 1")},
		{City: "Bandung", PostalCode: "40191", Origin: "Kopo", Distance: ns("12.5"), MinCharge: ns("150000")},
		{City: "Soreang", PostalCode: "40911", Origin: "banjaran", Distance: ns("-3")},
		{City: "Nowhere", PostalCode: "", Origin: "banjaran"},
	}

	batch := assembleDestinations(rows)
	if len(batch.Records) != 2 || batch.Skipped != 1 {
		t.Fatalf("records %d skipped %d", len(batch.Records), batch.Skipped)
	}

	bandung := batch.Records[0]
	if bandung.Zone != "ZONE 1" {
		t.Errorf("zone = %q", bandung.Zone)
	}
	if !bandung.Distances["kopo"].Equal(dec("12.5")) || !bandung.MinCharges["kopo"].Equal(dec("150000")) {
		t.Errorf("kopo figures = %s / %s", bandung.Distances["kopo"], bandung.MinCharges["kopo"])
	}

	soreang := batch.Records[1]
	if !soreang.Distances["banjaran"].IsZero() || !soreang.MinCharges["banjaran"].IsZero() {
		t.Errorf("negative or NULL figures must be zero: %+v", soreang)
	}
}

func TestAssembleItems(t *testing.T) {
	rows := []itemRateRow{
		{Item: "kulkas", Name: ns("Kulkas 2 Pintu"), PerKmRate: ns("15000"), Service: ns("standard"), Rate: ns("50000")},
		{Item: "kulkas", Service: ns("trade_in"), Rate: ns("75000")},
		{Item: "kulkas", Service: ns("lite_install"), Rate: ns("0")},
		{Item: "tv", PerKmRate: ns("8000")},
	}

	items := assembleItems(rows)
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	kulkas := items[0]
	if kulkas.Name != "Kulkas 2 Pintu" || !kulkas.PerKmRate.Equal(dec("15000")) {
		t.Errorf("kulkas = %+v", kulkas)
	}
	if len(kulkas.ServiceRates) != 2 {
		t.Errorf("service rates = %v", kulkas.ServiceRates)
	}
	if len(items[1].ServiceRates) != 0 {
		t.Errorf("tv rates = %v", items[1].ServiceRates)
	}
}
