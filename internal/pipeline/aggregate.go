package pipeline

import (
	"sort"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

// Overconsumption thresholds, as multiples of the average daily liters
const (
	ThresholdHigh     = 2.0
	ThresholdCritical = 3.0
)

// dedupKey identifies records that repeat across captured payloads
type dedupKey struct {
	date     string
	liters   float64
	m3       float64
	euros    float64
	hasEuros bool
}

func keyOf(r model.NormalizedRecord) dedupKey {
	k := dedupKey{date: r.Date.String(), liters: utils.Round6(r.Liters), m3: utils.Round6(r.M3)}
	if r.Euros != nil {
		k.euros = utils.Round6(*r.Euros)
		k.hasEuros = true
	}
	return k
}

// sums accumulates liters, m3 and the non-null costs of a record set
type sums struct {
	liters float64
	m3     float64
	euros  float64
	count  int
}

func (s *sums) add(r model.NormalizedRecord) {
	s.liters += r.Liters
	s.m3 += r.M3
	if r.Euros != nil {
		s.euros += *r.Euros
	}
	s.count++
}

// Aggregate merges the normalized records of a run into the trailing window
// of days ending at the latest observed date and computes the analytics.
func Aggregate(records []model.NormalizedRecord, days int, price *float64, metadata model.Metadata) *model.AggregateResult {
	if days < 1 {
		days = 1
	}
	if metadata == nil {
		metadata = model.Metadata{}
	}

	dated := make([]model.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.IsZero() {
			dated = append(dated, r)
		}
	}
	if len(dated) == 0 {
		return emptyResult(days, price, metadata)
	}

	end := dated[0].Date
	for _, r := range dated[1:] {
		if r.Date.After(end.Time) {
			end = r.Date
		}
	}
	cutoff := end.AddDays(-(days - 1))

	seen := make(map[dedupKey]struct{}, len(dated))
	kept := make([]model.NormalizedRecord, 0, len(dated))
	for _, r := range dated {
		if !r.Date.Within(cutoff, end) {
			continue
		}
		k := keyOf(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}

	var total, week, month sums
	weekStart, monthStart := end.WeekStart(), end.MonthStart()
	var last *model.NormalizedRecord
	for i := range kept {
		r := kept[i]
		total.add(r)
		if r.Date.Within(weekStart, end) {
			week.add(r)
		}
		if r.Date.Within(monthStart, end) {
			month.add(r)
		}
		if last == nil || r.Date.After(last.Date.Time) {
			last = &kept[i]
		}
	}

	totals := model.Totals{
		TotalLiters: total.liters,
		TotalM3:     total.m3,
		TotalEuros:  utils.RoundMoney(total.euros),
	}

	analytics := model.Analytics{
		WeekStart:     dayPtr(weekStart),
		WeekEnd:       dayPtr(end),
		WTDLiters:     week.liters,
		WTDM3:         week.m3,
		WTDEuros:      utils.RoundMoney(week.euros),
		WeekDayCount:  week.count,
		MonthStart:    dayPtr(monthStart),
		MonthEnd:      dayPtr(end),
		MTDLiters:     month.liters,
		MTDM3:         month.m3,
		MTDEuros:      utils.RoundMoney(month.euros),
		MonthDayCount: month.count,
		DaysInMonth:   end.DaysInMonth(),
	}
	if n := float64(len(kept)); n > 0 {
		analytics.AvgDailyLiters = totals.TotalLiters / n
		analytics.AvgDailyM3 = totals.TotalM3 / n
		analytics.AvgDailyEuros = utils.RoundMoney(totals.TotalEuros / n)
	}
	analytics.OverconsumptionLevel = model.LevelUnknown
	if last != nil {
		analytics.LastDate = dayPtr(last.Date)
		if analytics.AvgDailyLiters > 0 {
			ratio := last.Liters / analytics.AvgDailyLiters
			analytics.OverconsumptionRatio = &ratio
			analytics.OverconsumptionLevel = Classify(ratio)
		}
	}
	if price != nil && month.count > 0 {
		estimate := utils.RoundMoney(month.m3 / float64(month.count) * float64(analytics.DaysInMonth) * *price)
		analytics.EstimateMonthEuros = &estimate
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Date.Before(kept[j].Date.Time)
	})

	return &model.AggregateResult{
		Days:      days,
		From:      dayPtr(cutoff),
		To:        dayPtr(end),
		Totals:    totals,
		PriceM3:   price,
		Metadata:  metadata,
		Analytics: analytics,
		Daily:     kept,
	}
}

// Classify maps a last-day to average ratio onto an overconsumption level
func Classify(ratio float64) string {
	switch {
	case ratio >= ThresholdCritical:
		return model.LevelCritical
	case ratio >= ThresholdHigh:
		return model.LevelHigh
	default:
		return model.LevelNormal
	}
}

func emptyResult(days int, price *float64, metadata model.Metadata) *model.AggregateResult {
	return &model.AggregateResult{
		Days:     days,
		PriceM3:  price,
		Metadata: metadata,
		Analytics: model.Analytics{
			OverconsumptionLevel: model.LevelUnknown,
		},
		Daily: []model.NormalizedRecord{},
	}
}

func dayPtr(d model.Day) *model.Day {
	return &d
}
