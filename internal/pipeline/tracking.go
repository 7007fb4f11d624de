package pipeline

import (
	"time"

	"go-water-pipeline/internal/model"
)

// StatsTracker collects per-payload counters while the engine runs
type StatsTracker struct {
	stats model.RunStats
}

// NewStatsTracker starts tracking a run
func NewStatsTracker(runID string) *StatsTracker {
	return &StatsTracker{stats: model.RunStats{
		RunID:     runID,
		StartTime: time.Now(),
		Sources:   []model.SourceMetrics{},
	}}
}

// TrackSource records what one captured payload contributed
func (t *StatsTracker) TrackSource(m model.SourceMetrics) {
	t.stats.Payloads++
	t.stats.RecordsMined += m.RecordsMined
	t.stats.RecordsDropped += m.RecordsDropped
	t.stats.Sources = append(t.stats.Sources, m)
}

// Finish stamps the end time with the number of records the aggregator kept
func (t *StatsTracker) Finish(kept int) model.RunStats {
	t.stats.RecordsKept = kept
	t.stats.EndTime = time.Now()
	return t.stats
}
