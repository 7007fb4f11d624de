package model

import "time"

// SourceMetrics represents what the engine got out of one captured payload
type SourceMetrics struct {
	SourceURL         string `json:"source_url"`
	RecordsMined      int    `json:"records_mined"`
	RecordsNormalized int    `json:"records_normalized"`
	RecordsDropped    int    `json:"records_dropped"`
	MetadataFields    int    `json:"metadata_fields"` // new fields contributed by this payload
}

// RunStats represents per-run counters reported alongside the document
type RunStats struct {
	RunID          string          `json:"run_id"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Payloads       int             `json:"payloads"`
	RecordsMined   int             `json:"records_mined"`
	RecordsKept    int             `json:"records_kept"`
	RecordsDropped int             `json:"records_dropped"`
	Sources        []SourceMetrics `json:"sources"`
}

// Duration returns the elapsed engine time
func (s RunStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
