package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipping-cost/core/calculator"
	"shipping-cost/core/catalog"
	"shipping-cost/core/snapshot"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	cat := catalog.Default(catalog.ModelDistance)
	cat.AddItem(types.ItemCategory{ID: "kulkas", Name: "Kulkas 2 Pintu", PerKmRate: decimal.NewFromInt(15000)})
	records := []types.Destination{
		{
			City: "Bandung", PostalCode: "40191", Zone: "ZONE 1",
			Distances: map[types.OriginID]decimal.Decimal{
				"banjaran":   decimal.NewFromInt(22),
				"kopo":       decimal.NewFromInt(12),
				"kalimalang": decimal.NewFromInt(30),
			},
			MinCharges: map[types.OriginID]decimal.Decimal{"kopo": decimal.NewFromInt(150000)},
		},
		{
			City: "Soreang", PostalCode: "40911", Zone: "ZONE 2",
			Distances: map[types.OriginID]decimal.Decimal{"banjaran": decimal.NewFromInt(22)},
		},
	}
	snap := snapshot.New(cat, records, snapshot.Options{Source: "test"})

	cache := snapshot.NewCache(snapshot.StaticSource{Snapshot: snap}, snapshot.DefaultPolicy(), zap.NewNop())
	srv := New(cache, calculator.New(calculator.Options{}), nil, zap.NewNop())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestQuote(t *testing.T) {
	ts := testServer(t)

	resp := post(t, ts.URL+"/quote", `{"origin":"banjaran","postal_code":"40191","cart":[{"item":"kulkas","quantity":1}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}

	var body QuoteResponse
	decode(t, resp, &body)
	if !body.Success || body.Quote == nil {
		t.Fatalf("body = %+v", body)
	}
	if !body.Quote.FinalCost.Equal(decimal.NewFromInt(225000)) || body.Quote.Method != types.MethodDistanceCharge {
		t.Errorf("quote = %s %s", body.Quote.FinalCost, body.Quote.Method)
	}
	if body.Quote.SnapshotID == "" || body.Metadata.RequestID == "" {
		t.Errorf("missing snapshot or request ID: %+v", body.Metadata)
	}
}

func TestQuoteErrors(t *testing.T) {
	ts := testServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		typ    errors.Type
	}{
		{
			name:   "malformed JSON",
			body:   `{"origin":`,
			status: http.StatusBadRequest,
			typ:    errors.TypeInput,
		},
		{
			name:   "empty cart",
			body:   `{"origin":"banjaran","postal_code":"40191","cart":[]}`,
			status: http.StatusBadRequest,
			typ:    errors.TypeInput,
		},
		{
			name:   "unknown destination",
			body:   `{"origin":"banjaran","postal_code":"99999","cart":[{"item":"kulkas","quantity":1}]}`,
			status: http.StatusNotFound,
			typ:    errors.TypeNotFound,
		},
		{
			name:   "restricted service outside privileged zone",
			body:   `{"origin":"banjaran","postal_code":"40911","service":"trade_in","cart":[{"item":"kulkas","quantity":1}]}`,
			status: http.StatusUnprocessableEntity,
			typ:    errors.TypeServiceNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/quote", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body ErrorResponse
			decode(t, resp, &body)
			if body.Success || body.Error.Type != tt.typ {
				t.Errorf("error = %+v, want %s", body.Error, tt.typ)
			}
			if body.RequestID == "" {
				t.Error("missing request ID")
			}
		})
	}
}

func TestCompare(t *testing.T) {
	ts := testServer(t)

	resp := post(t, ts.URL+"/quote/compare", `{"postal_code":"40191","cart":[{"item":"kulkas","quantity":1}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body CompareResponse
	decode(t, resp, &body)
	if len(body.Quotes) != 3 {
		t.Fatalf("quotes = %d", len(body.Quotes))
	}
	first := body.Quotes[0]
	if first.Origin.ID != "kopo" || !first.Cheapest {
		t.Errorf("first quote = %s cheapest=%v", first.Origin.ID, first.Cheapest)
	}
	if !first.Result.FinalCost.Equal(decimal.NewFromInt(150000)) || first.Result.Method != types.MethodMinimumCharge {
		t.Errorf("kopo = %s %s", first.Result.FinalCost, first.Result.Method)
	}
}

func TestDestinations(t *testing.T) {
	ts := testServer(t)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"term", "q=soreang", 1},
		{"term matches every record", "q=4", 2},
		{"listing without term", "", 2},
		{"explicit limit", "limit=1", 1},
		{"term with explicit limit", "q=4&limit=1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/destinations?" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			var body DestinationsResponse
			decode(t, resp, &body)
			if body.Count != tt.count || len(body.Destinations) != tt.count {
				t.Errorf("count = %d, want %d", body.Count, tt.count)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/destinations?limit=zero")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}
}

func TestOrigins(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/destinations/40191/origins?city=bandung")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body OriginsResponse
	decode(t, resp, &body)
	if body.Comparison == nil || len(body.Comparison.Options) != 3 {
		t.Fatalf("comparison = %+v", body.Comparison)
	}
	for _, opt := range body.Comparison.Options {
		if opt.Origin.ID == "kopo" && !(opt.Cheapest && opt.Closest) {
			t.Errorf("kopo = %+v", opt)
		}
	}

	resp, err = http.Get(ts.URL + "/destinations/00000/origins")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown postal status = %d", resp.StatusCode)
	}
}

func TestSnapshotAndHealth(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	var snap SnapshotResponse
	decode(t, resp, &snap)
	if snap.Snapshot.ID == "" || snap.Snapshot.Destinations != 2 || snap.Cache.Reloads != 1 {
		t.Errorf("snapshot = %+v cache = %+v", snap.Snapshot, snap.Cache)
	}

	resp = post(t, ts.URL+"/snapshot/refresh", "")
	decode(t, resp, &snap)
	if snap.Cache.Reloads != 2 {
		t.Errorf("reloads after refresh = %d", snap.Cache.Reloads)
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	var health HealthResponse
	decode(t, resp, &health)
	if health.Status != "healthy" || health.SnapshotID != string(snap.Snapshot.ID) {
		t.Errorf("health = %+v", health)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	return nil, fmt.Errorf("database unreachable")
}

func TestSnapshotUnavailable(t *testing.T) {
	cache := snapshot.NewCache(failingSource{}, snapshot.DefaultPolicy(), zap.NewNop())
	ts := httptest.NewServer(New(cache, calculator.New(calculator.Options{}), nil, zap.NewNop()).Router())
	defer ts.Close()

	resp := post(t, ts.URL+"/quote", `{"origin":"banjaran","postal_code":"40191","cart":[{"item":"kulkas","quantity":1}]}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	var health HealthResponse
	decode(t, resp, &health)
	if health.Status != "no_snapshot" {
		t.Errorf("health = %+v", health)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts := testServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/quote", bytes.NewBufferString(`{}`))
	req.Header.Set(RequestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var body ErrorResponse
	decode(t, resp, &body)
	if resp.Header.Get(RequestIDHeader) != "req-42" || body.RequestID != "req-42" {
		t.Errorf("request ID = %q / %q", resp.Header.Get(RequestIDHeader), body.RequestID)
	}
}

func TestMetrics(t *testing.T) {
	ts := testServer(t)

	post(t, ts.URL+"/quote", `{"origin":"banjaran","postal_code":"40191","cart":[{"item":"kulkas","quantity":1}]}`).Body.Close()
	post(t, ts.URL+"/quote", `{"origin":"banjaran","postal_code":"99999","cart":[{"item":"kulkas","quantity":1}]}`).Body.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)

	for _, want := range []string{
		"shipping_cost_quotes_total 1",
		"shipping_cost_rejections_total 1",
		"shipping_cost_snapshot_reloads_total 1",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("metrics missing %q:\n%s", want, buf.String())
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Type]int{
		errors.TypeInput:              http.StatusBadRequest,
		errors.TypeAmbiguous:          http.StatusBadRequest,
		errors.TypeNotFound:           http.StatusNotFound,
		errors.TypeServiceNotAllowed:  http.StatusUnprocessableEntity,
		errors.TypeItemNotInstallable: http.StatusUnprocessableEntity,
		errors.TypeUnavailableRate:    http.StatusUnprocessableEntity,
		errors.TypeConfig:             http.StatusInternalServerError,
	}
	for typ, want := range tests {
		if got := StatusFor(typ); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", typ, got, want)
		}
	}
}
