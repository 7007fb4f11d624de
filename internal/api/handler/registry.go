package handler

import (
	"sync"
	"time"

	"go-water-pipeline/internal/model"
)

// DefaultRegistrySize is how many runs the API remembers
const DefaultRegistrySize = 50

// RunSummary is the listing view of a stored run
type RunSummary struct {
	RunID       string     `json:"run_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Status      string     `json:"status"` // "ok" or "error"
	Error       string     `json:"error,omitempty"`
	From        *model.Day `json:"from,omitempty"`
	To          *model.Day `json:"to,omitempty"`
	Level       string     `json:"overconsumption_level,omitempty"`
	Payloads    int        `json:"payloads"`
	RecordsKept int        `json:"records_kept"`
}

type storedRun struct {
	summary RunSummary
	report  model.Report
}

// Registry keeps the most recent run documents in memory. The oldest run is
// evicted once the size is reached; nothing survives a restart.
type Registry struct {
	mu    sync.RWMutex
	size  int
	order []string // oldest first
	runs  map[string]storedRun
}

// NewRegistry creates a registry holding at most size runs
func NewRegistry(size int) *Registry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	return &Registry{size: size, runs: make(map[string]storedRun)}
}

// Add stores a report under its run ID
func (r *Registry) Add(report model.Report, createdAt time.Time) RunSummary {
	summary := summarize(report, createdAt)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[summary.RunID]; !exists {
		r.order = append(r.order, summary.RunID)
	}
	r.runs[summary.RunID] = storedRun{summary: summary, report: report}
	for len(r.order) > r.size {
		delete(r.runs, r.order[0])
		r.order = r.order[1:]
	}
	return summary
}

// Get returns the report of a run
func (r *Registry) Get(runID string) (model.Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[runID]
	return run.report, ok
}

// Latest returns the most recently added run
func (r *Registry) Latest() (RunSummary, model.Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return RunSummary{}, model.Report{}, false
	}
	run := r.runs[r.order[len(r.order)-1]]
	return run.summary, run.report, true
}

// List returns summaries, newest first
func (r *Registry) List() []RunSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RunSummary, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.runs[r.order[i]].summary)
	}
	return out
}

func summarize(report model.Report, createdAt time.Time) RunSummary {
	s := RunSummary{
		RunID:       report.Stats.RunID,
		CreatedAt:   createdAt.UTC(),
		Status:      "ok",
		Payloads:    report.Stats.Payloads,
		RecordsKept: report.Stats.RecordsKept,
	}
	if report.Error != nil {
		s.Status = "error"
		s.Error = report.Error.Message
		return s
	}
	if report.Result != nil {
		s.From = report.Result.From
		s.To = report.Result.To
		s.Level = report.Result.Analytics.OverconsumptionLevel
	}
	return s
}
