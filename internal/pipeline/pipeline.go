package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"go-water-pipeline/internal/config"
	"go-water-pipeline/internal/model"
)

// Publisher receives successful results, e.g. the Home Assistant sink
type Publisher interface {
	Publish(ctx context.Context, result *model.AggregateResult) error
}

// Runner wires ingestion, the engine, export and publishing together
type Runner struct {
	Config    *config.Config
	Ingester  *Ingester
	Exporter  *ExportManager // optional
	Publisher Publisher      // optional
	Heuristic MagnitudeHeuristic
	Log       logrus.FieldLogger
}

// ------------------- Pipeline Runner -------------------

// Run executes one full run. Ingestion, export and publishing failures are
// logged and never change the returned document.
func (r *Runner) Run(ctx context.Context, runID string) model.Report {
	start := time.Now()
	log := r.Log.WithField("run_id", runID)
	log.Info("starting pipeline run")

	// --- INGESTION STAGE ---
	stageStart := time.Now()
	captures, failures := r.Ingester.StartIngestion(ctx, r.Config.Sources)
	for _, err := range failures {
		log.WithError(err).WithField("stage", "ingestion").Warn("capture source failed")
	}
	log.WithFields(logrus.Fields{
		"stage":       "ingestion",
		"payloads":    len(captures),
		"duration_ms": time.Since(stageStart).Milliseconds(),
	}).Info("ingestion stage completed")

	report := r.Process(runID, captures)
	r.Deliver(ctx, report)

	log.WithField("duration", time.Since(start)).Info("pipeline run finished")
	return report
}

// Process runs the engine on already captured payloads with the configured
// window and price, and logs its stats
func (r *Runner) Process(runID string, captures []model.Capture) model.Report {
	return r.ProcessWith(captures, Options{
		RunID:         runID,
		Days:          r.Config.Days,
		PriceOverride: r.Config.PriceM3,
	})
}

// ProcessWith is Process with per-run options. The runner's heuristic is
// used when opts has none.
func (r *Runner) ProcessWith(captures []model.Capture, opts Options) model.Report {
	if opts.Heuristic == nil {
		opts.Heuristic = r.Heuristic
	}
	report := Process(captures, opts)
	r.logReport(report)
	return report
}

// Deliver exports the document and publishes successful results
func (r *Runner) Deliver(ctx context.Context, report model.Report) {
	log := r.Log.WithField("run_id", report.Stats.RunID)

	// --- EXPORT STAGE ---
	if r.Exporter != nil {
		for _, res := range r.Exporter.ExportReport(report) {
			entry := log.WithFields(logrus.Fields{"stage": "export", "path": res.Path, "type": res.Type})
			if !res.Success {
				entry.WithField("error", res.Error).Warn("export failed")
				continue
			}
			entry.WithField("records", res.RecordCount).Debug("exported")
		}
	}

	// --- PUBLISH STAGE ---
	if r.Publisher == nil || !report.OK() {
		return
	}
	stageStart := time.Now()
	if err := r.Publisher.Publish(ctx, report.Result); err != nil {
		log.WithError(err).WithField("stage", "publish").Warn("publishing failed")
		return
	}
	log.WithFields(logrus.Fields{
		"stage":       "publish",
		"duration_ms": time.Since(stageStart).Milliseconds(),
	}).Info("publish stage completed")
}

func (r *Runner) logReport(report model.Report) {
	stats := report.Stats
	log := r.Log.WithFields(logrus.Fields{"run_id": stats.RunID, "stage": "engine"})
	for _, src := range stats.Sources {
		log.WithFields(logrus.Fields{
			"source":             src.SourceURL,
			"records_mined":      src.RecordsMined,
			"records_normalized": src.RecordsNormalized,
			"records_dropped":    src.RecordsDropped,
			"metadata_fields":    src.MetadataFields,
		}).Debug("payload processed")
	}

	entry := log.WithFields(logrus.Fields{
		"payloads":      stats.Payloads,
		"records_mined": stats.RecordsMined,
		"records_kept":  stats.RecordsKept,
		"duration_ms":   stats.Duration().Milliseconds(),
	})
	if report.Error != nil {
		entry.WithError(report.Error.Err()).Warn(report.Error.Message)
		return
	}
	entry.WithFields(logrus.Fields{
		"from":  report.Result.From,
		"to":    report.Result.To,
		"level": report.Result.Analytics.OverconsumptionLevel,
	}).Info("engine stage completed")
}
