package handlers

import (
	"time"

	"github.com/sawpanic/arbscan/internal/model"
)

// ErrorResponse represents API error responses
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse reports service liveness and snapshot freshness
type HealthResponse struct {
	Status        string    `json:"status"` // "ok" or "degraded"
	UptimeSeconds float64   `json:"uptime_seconds"`
	SnapshotAge   *float64  `json:"snapshot_age_seconds,omitempty"`
	ExchangeCount int       `json:"exchange_count"`
	SymbolCount   int       `json:"symbol_count"`
	Timestamp     time.Time `json:"timestamp"`
}

// QuotesResponse lists per-exchange quotes for one symbol
type QuotesResponse struct {
	Symbol    string        `json:"symbol"`
	Quotes    []model.Quote `json:"quotes"`
	Count     int           `json:"count"`
	Timestamp time.Time     `json:"timestamp"`
}

// StatsResponse wraps runtime counters and per-exchange health
type StatsResponse struct {
	Stats       model.Stats       `json:"stats"`
	Performance model.PerfSummary `json:"performance"`
	Timestamp   time.Time         `json:"timestamp"`
}
