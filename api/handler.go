package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"shipping-cost/core/snapshot"
	"shipping-cost/internal/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.cache.Stats()
	status := "healthy"
	if stats.SnapshotID == "" {
		status = "no_snapshot"
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     status,
		SnapshotID: string(stats.SnapshotID),
		Version:    Version,
	})
}

// currentSnapshot resolves the current snapshot or writes 503
func (s *Server) currentSnapshot(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, bool) {
	snap, err := s.cache.Get(r.Context())
	if err != nil {
		s.logger.Error("snapshot unavailable", zap.String("request_id", requestID(r)), zap.Error(err))
		s.writeErrorStatus(w, r, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return snap, true
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req QuoteRequest
	if err := s.parseJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	res, err := snap.Quote(s.calc, req.Request)
	if err != nil {
		s.logger.Debug("quote rejected",
			zap.String("request_id", requestID(r)),
			zap.String("type", string(errors.TypeOf(err))),
			zap.Error(err),
		)
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	s.quoteCount++
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, QuoteResponse{
		Success:  true,
		Quote:    res,
		Metadata: s.metadata(r, start),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req QuoteRequest
	if err := s.parseJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	quotes, err := snap.CompareOrigins(s.calc, req.Request)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	s.quoteCount += int64(len(quotes))
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, CompareResponse{
		Success:  true,
		Quotes:   quotes,
		Metadata: s.metadata(r, start),
	})
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// zero lets the table apply its own listing cap
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, r, errors.Newf(errors.TypeInput, "limit must be a positive integer, got %q", raw))
			return
		}
		limit = n
	}

	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	found := snap.Locations.Search(strings.TrimSpace(r.URL.Query().Get("q")), limit)
	s.writeJSON(w, http.StatusOK, DestinationsResponse{
		Success:      true,
		Destinations: found,
		Count:        len(found),
		Metadata:     s.metadata(r, start),
	})
}

func (s *Server) handleOrigins(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	cmp, err := snap.Locations.Compare(r.URL.Query().Get("city"), r.PathValue("postal"), snap.Catalog.Origins())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, OriginsResponse{
		Success:    true,
		Comparison: cmp,
		Metadata:   s.metadata(r, start),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}
	s.writeSnapshot(w, r, snap, start)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap, err := s.cache.Refresh(r.Context())
	if err != nil {
		s.writeErrorStatus(w, r, http.StatusServiceUnavailable, err)
		return
	}
	s.logger.Info("snapshot refreshed", zap.String("request_id", requestID(r)), zap.String("snapshot", string(snap.ID)))
	s.writeSnapshot(w, r, snap, start)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, snap *snapshot.Snapshot, start time.Time) {
	s.writeJSON(w, http.StatusOK, SnapshotResponse{
		Success:  true,
		Snapshot: snap.Info(),
		Cache:    s.cache.Stats(),
		Metadata: s.metadata(r, start),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	avgLatency := float64(0)
	if s.requestCount > 0 {
		avgLatency = float64(s.totalLatencyMs) / float64(s.requestCount)
	}
	cache := s.cache.Stats()

	metrics := fmt.Sprintf(`# HELP shipping_cost_requests_total Total requests
# TYPE shipping_cost_requests_total counter
shipping_cost_requests_total %d

# HELP shipping_cost_errors_total Requests answered with a 5xx status
# TYPE shipping_cost_errors_total counter
shipping_cost_errors_total %d

# HELP shipping_cost_quotes_total Quotes computed
# TYPE shipping_cost_quotes_total counter
shipping_cost_quotes_total %d

# HELP shipping_cost_rejections_total Requests rejected with a 4xx status
# TYPE shipping_cost_rejections_total counter
shipping_cost_rejections_total %d

# HELP shipping_cost_latency_avg_ms Average latency
# TYPE shipping_cost_latency_avg_ms gauge
shipping_cost_latency_avg_ms %.2f

# HELP shipping_cost_snapshot_reloads_total Snapshot reloads
# TYPE shipping_cost_snapshot_reloads_total counter
shipping_cost_snapshot_reloads_total %d

# HELP shipping_cost_snapshot_failures_total Failed snapshot reloads
# TYPE shipping_cost_snapshot_failures_total counter
shipping_cost_snapshot_failures_total %d

# HELP shipping_cost_snapshot_stale_hits_total Requests served from a stale snapshot
# TYPE shipping_cost_snapshot_stale_hits_total counter
shipping_cost_snapshot_stale_hits_total %d
`, s.requestCount, s.errorCount, s.quoteCount, s.rejectionCount, avgLatency,
		cache.Reloads, cache.Failures, cache.StaleHits)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(metrics))
}
