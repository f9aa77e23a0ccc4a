package models

import "time"

// SystemMetrics is a point-in-time summary of service activity.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	AllocationsTotal         uint64    `json:"allocations_total"`
	AverageAllocationMs      float64   `json:"average_allocation_ms"`
	ConflictsTotal           uint64    `json:"conflicts_total"`
	UnmetOccurrencesTotal    uint64    `json:"unmet_occurrences_total"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
