package pipeline

import "go-water-pipeline/internal/model"

// DefaultDays is the trailing window the portal history covers
const DefaultDays = 40

// Options are the plain parameters of one engine invocation
type Options struct {
	RunID         string
	Days          int
	PriceOverride *float64
	Heuristic     MagnitudeHeuristic
}

// Process runs the mining and aggregation engine over the captured payloads.
// It never fails: whole-run conditions come back as an error document.
func Process(captures []model.Capture, opts Options) model.Report {
	tracker := NewStatsTracker(opts.RunID)
	if len(captures) == 0 {
		return model.Report{Error: model.NewNoPayloadsDocument(), Stats: tracker.Finish(0)}
	}
	days := opts.Days
	if days == 0 {
		days = DefaultDays
	}

	acc := NewAccumulator()
	normalizer := NewNormalizer(opts.Heuristic)
	var records []model.NormalizedRecord
	urls := make([]string, 0, len(captures))

	for _, c := range captures {
		urls = append(urls, c.URL)
		metrics := model.SourceMetrics{SourceURL: c.URL}
		metrics.MetadataFields = MineMetadata(c.Body, acc)

		price := opts.PriceOverride
		if price == nil {
			price = acc.Price
		}

		raw := MineRecords(c.Body)
		metrics.RecordsMined = len(raw)
		for _, rec := range raw {
			normalized, ok := normalizer.Normalize(rec, price)
			if !ok {
				metrics.RecordsDropped++
				continue
			}
			metrics.RecordsNormalized++
			records = append(records, normalized)
		}
		tracker.TrackSource(metrics)
	}

	if len(records) == 0 {
		return model.Report{Error: model.NewNoConsumptionDocument(urls), Stats: tracker.Finish(0)}
	}

	price := opts.PriceOverride
	if price == nil {
		price = acc.Price
	}
	result := Aggregate(records, days, price, acc.Metadata)
	return model.Report{Result: result, Stats: tracker.Finish(len(result.Daily))}
}
