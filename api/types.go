package api

import (
	"time"

	"shipping-cost/core/calculator"
	"shipping-cost/core/location"
	"shipping-cost/core/output"
	"shipping-cost/core/snapshot"
	"shipping-cost/core/types"
)

// QuoteRequest is the body of POST /quote and POST /quote/compare.
// Origin is ignored by /quote/compare.
type QuoteRequest struct {
	types.Request
}

// ResponseMetadata is response context
type ResponseMetadata struct {
	RequestID  string    `json:"request_id"`
	DurationMs int64     `json:"duration_ms"`
	Version    string    `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

// QuoteResponse is returned by POST /quote
type QuoteResponse struct {
	Success  bool             `json:"success"`
	Quote    *types.Result    `json:"quote"`
	Metadata ResponseMetadata `json:"metadata"`
}

// CompareResponse is returned by POST /quote/compare, cheapest first
type CompareResponse struct {
	Success  bool                     `json:"success"`
	Quotes   []calculator.OriginQuote `json:"quotes"`
	Metadata ResponseMetadata         `json:"metadata"`
}

// DestinationsResponse is returned by GET /destinations
type DestinationsResponse struct {
	Success      bool                `json:"success"`
	Destinations []types.Destination `json:"destinations"`
	Count        int                 `json:"count"`
	Metadata     ResponseMetadata    `json:"metadata"`
}

// OriginsResponse is returned by GET /destinations/{postal}/origins
type OriginsResponse struct {
	Success    bool                 `json:"success"`
	Comparison *location.Comparison `json:"comparison"`
	Metadata   ResponseMetadata     `json:"metadata"`
}

// SnapshotResponse is returned by GET /snapshot and POST /snapshot/refresh
type SnapshotResponse struct {
	Success  bool                `json:"success"`
	Snapshot snapshot.Info       `json:"snapshot"`
	Cache    snapshot.CacheStats `json:"cache"`
	Metadata ResponseMetadata    `json:"metadata"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status     string `json:"status"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Version    string `json:"version"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     output.ErrorBody `json:"error"`
	RequestID string           `json:"request_id,omitempty"`
}
