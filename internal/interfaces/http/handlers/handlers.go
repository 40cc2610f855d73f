// Package handlers implements the JSON endpoint handlers for the read-only
// arbitrage API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/engine"
	"github.com/sawpanic/arbscan/internal/exchange"
)

// Handlers manages all HTTP endpoint handlers
type Handlers struct {
	engine  *engine.Engine
	clk     clock.Clock
	started time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(eng *engine.Engine, clk clock.Clock) *Handlers {
	return &Handlers{
		engine:  eng,
		clk:     clk,
		started: clk.Now(),
	}
}

// writeJSON writes JSON response with proper error handling
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

// writeError writes standardized error response
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value("request_id").(string)

	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: h.clk.Now().UTC(),
	})
}

// Health reports liveness plus snapshot freshness. Degraded means the
// process is up but no snapshot has been captured yet.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	now := h.clk.Now()
	resp := HealthResponse{
		Status:        "ok",
		UptimeSeconds: now.Sub(h.started).Seconds(),
		Timestamp:     now.UTC(),
	}

	if snap := h.engine.CurrentSnapshot(); snap != nil {
		age := now.Sub(snap.CapturedAt).Seconds()
		resp.SnapshotAge = &age
		resp.ExchangeCount = snap.ExchangeCount
		resp.SymbolCount = snap.SymbolCount
	} else {
		resp.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Opportunities serves the ranked opportunity report. Filters and the
// access tier come from query parameters; invalid input is a 400.
func (h *Handlers) Opportunities(w http.ResponseWriter, r *http.Request) {
	tier, filters, err := parseQuery(r.URL.Query())
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	report, err := h.engine.GetOpportunities(r.Context(), tier, filters)
	if err != nil {
		if r.Context().Err() != nil && errors.Is(err, r.Context().Err()) {
			h.writeError(w, r, http.StatusServiceUnavailable, "request_cancelled", err.Error())
			return
		}
		h.writeError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// Quotes serves per-exchange quotes for a single symbol, cheapest first.
func (h *Handlers) Quotes(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	quotes, err := h.engine.GetSymbolQuotes(r.Context(), symbol)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_symbol", err.Error())
		return
	}
	if len(quotes) == 0 {
		h.writeError(w, r, http.StatusNotFound, "symbol_not_found",
			"no exchange currently quotes this symbol")
		return
	}

	h.writeJSON(w, http.StatusOK, QuotesResponse{
		Symbol:    exchange.NormalizeSymbol(symbol, ""),
		Quotes:    quotes,
		Count:     len(quotes),
		Timestamp: h.clk.Now().UTC(),
	})
}

// Stats serves runtime counters and per-exchange request health.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, StatsResponse{
		Stats:       h.engine.Stats(),
		Performance: h.engine.Performance(),
		Timestamp:   h.clk.Now().UTC(),
	})
}

// NotFound handles 404 responses
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	log.Debug().Str("path", r.URL.Path).Msg("unknown endpoint requested")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
