package calculator

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"shipping-cost/core/catalog"
	"shipping-cost/core/location"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testCatalog(model catalog.Model) *catalog.Catalog {
	c := catalog.NewCatalog(model, types.CurrencyIDR)
	c.AddOrigin(types.Origin{ID: "banjaran", Name: "Banjaran", FreeKm: dec(7)})
	c.AddOrigin(types.Origin{ID: "kopo", Name: "Kopo", FreeKm: dec(10)})

	c.AddService(types.Service{Type: types.ServiceStandard, Label: "Standard Delivery"})
	c.AddService(types.Service{Type: "nextday", Label: "Next Day", Fee: dec(20000), RequiresRate: true})
	c.AddService(types.Service{Type: "trade_in", Label: "Trade In Delivery", Restricted: true, RequiresRate: true})
	c.AddService(types.Service{Type: "lite_install", Label: "Lite Install", Restricted: true, RequiresRate: true, Installation: true})

	c.AddItem(types.ItemCategory{
		ID: "kulkas", Name: "Kulkas 2 Pintu", PerKmRate: dec(15000),
		ServiceRates: map[types.ServiceType]decimal.Decimal{
			"standard": dec(50000), "nextday": dec(25000), "trade_in": dec(75000), "lite_install": dec(0),
		},
	})
	c.AddItem(types.ItemCategory{
		ID: "tv", Name: "TV 43 inch", PerKmRate: dec(8000),
		ServiceRates: map[types.ServiceType]decimal.Decimal{
			"standard": dec(30000), "lite_install": dec(100000),
		},
	})
	return c
}

func testTable() *location.Table {
	return location.NewTable([]types.Destination{
		{
			City: "Bandung", PostalCode: "40191", Zone: "ZONE 1",
			Distances: map[types.OriginID]decimal.Decimal{"banjaran": dec(22), "kopo": dec(12)},
		},
		{
			City: "Soreang", PostalCode: "40911", Zone: "ZONE 2",
			Distances:  map[types.OriginID]decimal.Decimal{"banjaran": dec(22), "kopo": dec(22)},
			MinCharges: map[types.OriginID]decimal.Decimal{"banjaran": dec(300000)},
		},
		{
			City: "Banjaran", PostalCode: "40377",
			Distances:  map[types.OriginID]decimal.Decimal{"banjaran": dec(5)},
			MinCharges: map[types.OriginID]decimal.Decimal{"banjaran": dec(300000)},
		},
	}, location.Options{FallbackZone: "ZONE 2"})
}

func request(postal string, service types.ServiceType, cart ...types.CartLine) types.Request {
	return types.Request{Origin: "banjaran", PostalCode: postal, Service: service, Cart: cart}
}

func line(item string, qty int) types.CartLine {
	return types.CartLine{Item: item, Quantity: qty}
}

func TestDistanceModelScenarios(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	tbl := testTable()

	tests := []struct {
		name   string
		req    types.Request
		cost   int64
		method types.Method
	}{
		{
			name:   "billable km at largest per-km rate",
			req:    request("40191", "", line("kulkas", 1), line("tv", 3)),
			cost:   225000, // (22 - 7) * 15000
			method: types.MethodDistanceCharge,
		},
		{
			name:   "minimum charge floor",
			req:    request("40911", "", line("kulkas", 1)),
			cost:   300000,
			method: types.MethodMinimumCharge,
		},
		{
			name:   "within free radius",
			req:    request("40377", "", line("kulkas", 10), line("tv", 1)),
			cost:   0,
			method: types.MethodFree,
		},
		{
			name:   "zero quantity line is ignored",
			req:    request("40191", "", line("kulkas", 0), line("tv", 1)),
			cost:   120000, // 15 * 8000
			method: types.MethodDistanceCharge,
		},
		{
			name:   "handling, service rate and fee added",
			req:    request("40191", "nextday", line("kulkas", 2)),
			cost:   225000 + 2*25000 + 20000,
			method: types.MethodDistanceCharge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(tt.req, cat, tbl)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if !res.FinalCost.Equal(dec(tt.cost)) {
				t.Errorf("FinalCost = %s, want %d\n%s", res.FinalCost, tt.cost, res.Explanation)
			}
			if res.Method != tt.method {
				t.Errorf("Method = %s, want %s", res.Method, tt.method)
			}
			if res.Model != string(catalog.ModelDistance) {
				t.Errorf("Model = %s", res.Model)
			}
		})
	}
}

func TestDistanceModelHandlingFee(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	cat.AddItem(types.ItemCategory{ID: "sofa", PerKmRate: dec(10000), HandlingFee: dec(5000)})

	res, err := Compute(request("40911", "", line("sofa", 3)), cat, testTable())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// floor 300000 + 3 * 5000 handling
	if !res.FinalCost.Equal(dec(315000)) {
		t.Errorf("FinalCost = %s, want 315000", res.FinalCost)
	}
	if res.Method != types.MethodMinimumCharge {
		t.Errorf("Method = %s", res.Method)
	}
	if len(res.Breakdown) != 2 {
		t.Fatalf("breakdown = %+v", res.Breakdown)
	}
	if res.Breakdown[1].Component != "handling: sofa" || !res.Breakdown[1].Subtotal.Equal(dec(15000)) {
		t.Errorf("handling line = %+v", res.Breakdown[1])
	}
}

func TestFlatModelScenarios(t *testing.T) {
	cat := testCatalog(catalog.ModelFlat)
	tbl := testTable()
	cart := []types.CartLine{line("kulkas", 2), line("tv", 1)}

	tests := []struct {
		name   string
		policy FreeRadiusPolicy
		postal string
		cost   int64
		method types.Method
	}{
		{"item rate total", WaiveOrder, "40191", 130000, types.MethodItemRateTotal},
		{"minimum charge wins", WaiveOrder, "40911", 300000, types.MethodMinimumCharge},
		{"free radius waives order", WaiveOrder, "40377", 0, types.MethodFree},
		{"free radius waives delivery only", WaiveDelivery, "40377", 130000, types.MethodItemRateTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := New(Options{FreeRadius: tt.policy})
			res, err := calc.Compute(request(tt.postal, "", cart...), cat, tbl)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if !res.FinalCost.Equal(dec(tt.cost)) {
				t.Errorf("FinalCost = %s, want %d\n%s", res.FinalCost, tt.cost, res.Explanation)
			}
			if res.Method != tt.method {
				t.Errorf("Method = %s, want %s", res.Method, tt.method)
			}
		})
	}
}

func TestZoneGating(t *testing.T) {
	tbl := testTable()
	for _, model := range []catalog.Model{catalog.ModelDistance, catalog.ModelFlat} {
		cat := testCatalog(model)

		_, err := Compute(request("40911", "Trade In Delivery", line("kulkas", 1)), cat, tbl)
		if !errors.IsType(err, errors.TypeServiceNotAllowed) {
			t.Errorf("%s: request-level trade in in ZONE 2: got %v", model, err)
		}

		override := types.CartLine{Item: "kulkas", Quantity: 1, Service: "trade_in"}
		_, err = Compute(request("40911", "", override), cat, tbl)
		if !errors.IsType(err, errors.TypeServiceNotAllowed) {
			t.Errorf("%s: line-level trade in in ZONE 2: got %v", model, err)
		}

		// Banjaran has no zone and falls back to ZONE 2
		_, err = Compute(request("40377", "trade_in", line("kulkas", 1)), cat, tbl)
		if !errors.IsType(err, errors.TypeServiceNotAllowed) {
			t.Errorf("%s: fallback zone must not allow trade in: got %v", model, err)
		}

		res, err := Compute(request("40191", "trade_in", line("kulkas", 1)), cat, tbl)
		if err != nil {
			t.Errorf("%s: trade in allowed in ZONE 1: %v", model, err)
		} else if res.Service != "trade_in" {
			t.Errorf("%s: Service = %s", model, res.Service)
		}
	}
}

func TestInstallation(t *testing.T) {
	cat := testCatalog(catalog.ModelFlat)
	tbl := testTable()

	_, err := Compute(request("40191", "lite_install", line("tv", 1), line("kulkas", 1)), cat, tbl)
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeItemNotInstallable {
		t.Fatalf("got %v, want ITEM_NOT_INSTALLABLE", err)
	}
	if e.Item != "kulkas" {
		t.Errorf("offending item = %q, want kulkas", e.Item)
	}

	res, err := Compute(request("40191", "lite_install", line("tv", 2)), cat, tbl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !res.FinalCost.Equal(dec(200000)) {
		t.Errorf("FinalCost = %s, want 200000", res.FinalCost)
	}
}

func TestUnavailableRate(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	_, err := Compute(request("40191", "nextday", line("tv", 1)), cat, testTable())
	e, ok := errors.As(err)
	if !ok || e.Type != errors.TypeUnavailableRate || e.Item != "tv" {
		t.Errorf("got %v, want UNAVAILABLE_RATE for tv", err)
	}
}

func TestRejections(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	tbl := testTable()

	unknownOrigin := request("40191", "", line("kulkas", 1))
	unknownOrigin.Origin = "cikarang"

	tests := []struct {
		name string
		req  types.Request
		want errors.Type
	}{
		{"negative quantity", request("40191", "", line("kulkas", -1)), errors.TypeInput},
		{"nothing selected", request("40191", "", line("kulkas", 0)), errors.TypeInput},
		{"empty cart", request("40191", ""), errors.TypeInput},
		{"unknown item", request("40191", "", line("sofa", 1)), errors.TypeNotFound},
		{"unknown destination", request("99999", "", line("kulkas", 1)), errors.TypeNotFound},
		{"unknown service", request("40191", "express", line("kulkas", 1)), errors.TypeNotFound},
		{"unknown origin", unknownOrigin, errors.TypeNotFound},
		{"free radius still validates", request("40377", "", line("sofa", 1)), errors.TypeNotFound},
	}

	calc := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := calc.Run(tt.req, cat, tbl)
			if run.State != StateRejected {
				t.Fatalf("State = %s, want rejected", run.State)
			}
			if run.Result != nil {
				t.Error("rejected calculation must not carry a result")
			}
			if !errors.IsType(run.Err, tt.want) {
				t.Errorf("Err = %v, want %s", run.Err, tt.want)
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	tbl := testTable()
	req := request("40191", "nextday", line("kulkas", 2))

	first, err := Compute(req, cat, tbl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(req, cat, tbl)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
	if first.ID == "" {
		t.Error("result ID not set")
	}
}

func TestMinimumChargeFloorHolds(t *testing.T) {
	tbl := testTable()
	carts := [][]types.CartLine{
		{line("tv", 1)},
		{line("kulkas", 1)},
		{line("kulkas", 5), line("tv", 5)},
	}
	for _, model := range []catalog.Model{catalog.ModelDistance, catalog.ModelFlat} {
		cat := testCatalog(model)
		for _, cart := range carts {
			res, err := Compute(request("40911", "", cart...), cat, tbl)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if res.FinalCost.LessThan(dec(300000)) {
				t.Errorf("%s: FinalCost %s below minimum charge", model, res.FinalCost)
			}
		}
	}
}

func TestModelOverride(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	res, err := New(Options{Model: catalog.ModelFlat}).Compute(request("40191", "", line("tv", 1)), cat, testTable())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Model != string(catalog.ModelFlat) || !res.FinalCost.Equal(dec(30000)) {
		t.Errorf("override ignored: model %s cost %s", res.Model, res.FinalCost)
	}
}

func TestCompareOrigins(t *testing.T) {
	cat := testCatalog(catalog.ModelDistance)
	quotes, err := New(Options{}).CompareOrigins(request("40191", "", line("kulkas", 1)), cat, testTable())
	if err != nil {
		t.Fatalf("CompareOrigins: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("quotes = %d", len(quotes))
	}
	// kopo: (12 - 10) * 15000
	if quotes[0].Origin.ID != "kopo" || !quotes[0].Result.FinalCost.Equal(dec(30000)) || !quotes[0].Cheapest {
		t.Errorf("first quote = %+v", quotes[0])
	}
	if quotes[1].Cheapest {
		t.Error("banjaran must not be marked cheapest")
	}

	_, err = New(Options{}).CompareOrigins(request("40911", "trade_in", line("kulkas", 1)), cat, testTable())
	if !errors.IsType(err, errors.TypeServiceNotAllowed) {
		t.Errorf("got %v, want SERVICE_NOT_ALLOWED", err)
	}
}

func TestParseFreeRadiusPolicy(t *testing.T) {
	if p, err := ParseFreeRadiusPolicy(""); err != nil || p != WaiveOrder {
		t.Errorf("empty = %s, %v", p, err)
	}
	if p, err := ParseFreeRadiusPolicy("WAIVE_DELIVERY"); err != nil || p != WaiveDelivery {
		t.Errorf("WAIVE_DELIVERY = %s, %v", p, err)
	}
	if _, err := ParseFreeRadiusPolicy("half"); err == nil {
		t.Error("unknown policy accepted")
	}
}

func TestFlatModelZeroRateRejected(t *testing.T) {
	tbl := testTable()

	tests := []struct {
		name    string
		item    types.ItemCategory
		service types.ServiceType
		want    errors.Type
	}{
		{
			name: "no standard rate",
			item: types.ItemCategory{ID: "sofa", PerKmRate: dec(10000)},
			want: errors.TypeUnavailableRate,
		},
		{
			name: "zero standard rate",
			item: types.ItemCategory{ID: "sofa", PerKmRate: dec(10000),
				ServiceRates: map[types.ServiceType]decimal.Decimal{"standard": dec(0)}},
			want: errors.TypeUnavailableRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := testCatalog(catalog.ModelFlat)
			cat.AddItem(tt.item)

			run := New(Options{}).Run(request("40191", tt.service, line("sofa", 3)), cat, tbl)
			if run.State != StateRejected {
				t.Fatalf("State = %s, want rejected (result %+v)", run.State, run.Result)
			}
			e, ok := errors.As(run.Err)
			if !ok || e.Type != tt.want || e.Item != "sofa" {
				t.Errorf("Err = %v, want %s for sofa", run.Err, tt.want)
			}
		})
	}

	// the same item prices under the distance model
	cat := testCatalog(catalog.ModelDistance)
	cat.AddItem(tests[0].item)
	if _, err := Compute(request("40191", "", line("sofa", 3)), cat, tbl); err != nil {
		t.Errorf("distance model: %v", err)
	}
}

func TestDistanceModelZeroPerKmRejected(t *testing.T) {
	tbl := testTable()

	tests := []struct {
		name   string
		postal string
	}{
		{"beyond free radius", "40191"},
		{"under minimum charge", "40911"},
		{"within free radius", "40377"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := testCatalog(catalog.ModelDistance)
			cat.AddItem(types.ItemCategory{ID: "lemari",
				ServiceRates: map[types.ServiceType]decimal.Decimal{"standard": dec(40000)}})

			_, err := Compute(request(tt.postal, "", line("lemari", 1), line("tv", 1)), cat, tbl)
			e, ok := errors.As(err)
			if !ok || e.Type != errors.TypeUnavailableRate || e.Item != "lemari" {
				t.Errorf("got %v, want UNAVAILABLE_RATE for lemari", err)
			}
		})
	}
}
