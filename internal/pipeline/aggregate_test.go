package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

func dailyDates(r *model.AggregateResult) []string {
	var out []string
	for _, d := range r.Daily {
		out = append(out, d.Date.String())
	}
	return out
}

func TestAggregateScenarioA(t *testing.T) {
	result := Aggregate([]model.NormalizedRecord{
		liters("2024-01-01", 200),
		liters("2024-01-02", 600),
	}, 2, nil, nil)

	require.Equal(t, 2, result.Days)
	require.Equal(t, "2024-01-01", result.From.String())
	require.Equal(t, "2024-01-02", result.To.String())
	require.Equal(t, 800.0, result.Totals.TotalLiters)
	require.InDelta(t, 0.8, result.Totals.TotalM3, 1e-12)
	require.Equal(t, 0.0, result.Totals.TotalEuros)
	require.Equal(t, 400.0, result.Analytics.AvgDailyLiters)
	require.Equal(t, 1.5, *result.Analytics.OverconsumptionRatio)
	require.Equal(t, model.LevelNormal, result.Analytics.OverconsumptionLevel)
	require.Nil(t, result.PriceM3)
	require.Nil(t, result.Analytics.EstimateMonthEuros)
}

func TestAggregateCriticalRatio(t *testing.T) {
	// average 400 liters, last day 1300
	result := Aggregate([]model.NormalizedRecord{
		liters("2024-01-01", 100),
		liters("2024-01-02", 100),
		liters("2024-01-03", 100),
		liters("2024-01-04", 1300),
	}, 4, nil, nil)

	require.Equal(t, 400.0, result.Analytics.AvgDailyLiters)
	require.Equal(t, 3.25, *result.Analytics.OverconsumptionRatio)
	require.Equal(t, model.LevelCritical, result.Analytics.OverconsumptionLevel)
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		ratio  float64
		expect string
	}{
		{ratio: 1.9, expect: model.LevelNormal},
		{ratio: 2.0, expect: model.LevelHigh},
		{ratio: 2.99, expect: model.LevelHigh},
		{ratio: 3.0, expect: model.LevelCritical},
		{ratio: 0, expect: model.LevelNormal},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, Classify(test.ratio), "ratio %v", test.ratio)
	}
}

func TestAggregateThresholdsEndToEnd(t *testing.T) {
	high := Aggregate([]model.NormalizedRecord{liters("2024-01-01", 0), liters("2024-01-02", 100)}, 40, nil, nil)
	require.Equal(t, 2.0, *high.Analytics.OverconsumptionRatio)
	require.Equal(t, model.LevelHigh, high.Analytics.OverconsumptionLevel)

	critical := Aggregate([]model.NormalizedRecord{
		liters("2024-01-01", 0), liters("2024-01-02", 0), liters("2024-01-03", 150),
	}, 40, nil, nil)
	require.Equal(t, 3.0, *critical.Analytics.OverconsumptionRatio)
	require.Equal(t, model.LevelCritical, critical.Analytics.OverconsumptionLevel)

	zero := Aggregate([]model.NormalizedRecord{liters("2024-01-01", 0)}, 40, nil, nil)
	require.Nil(t, zero.Analytics.OverconsumptionRatio)
	require.Equal(t, model.LevelUnknown, zero.Analytics.OverconsumptionLevel)
}

func TestAggregateDeduplicationIsIdempotent(t *testing.T) {
	records := []model.NormalizedRecord{
		withEuros(liters("2024-01-01", 200), 0.86),
		liters("2024-01-02", 300),
		withEuros(liters("2024-01-03", 250), 1.08),
	}
	doubled := append(append([]model.NormalizedRecord(nil), records...), records...)
	doubled = append(doubled, liters("2024-01-02", 300.0000000001))

	once := Aggregate(records, 40, nil, nil)
	twice := Aggregate(doubled, 40, nil, nil)

	require.Equal(t, once.Totals, twice.Totals)
	require.Equal(t, dailyDates(once), dailyDates(twice))
}

func TestAggregateKeepsDistinctRecordsOnSameDay(t *testing.T) {
	result := Aggregate([]model.NormalizedRecord{
		liters("2024-01-02", 300),
		withEuros(liters("2024-01-02", 300), 1.2),
		liters("2024-01-01", 100),
	}, 40, nil, nil)

	require.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-02"}, dailyDates(result))
	require.Equal(t, 700.0, result.Totals.TotalLiters)
	require.Equal(t, 1.2, result.Totals.TotalEuros)
	// the stable sort keeps encounter order within a day
	require.Nil(t, result.Daily[1].Euros)
	require.Equal(t, 1.2, *result.Daily[2].Euros)
}

func TestAggregateWindow(t *testing.T) {
	var records []model.NormalizedRecord
	start := day("2024-02-20")
	for i := 0; i < 10; i++ {
		records = append(records, liters(start.AddDays(i).String(), float64(100+i)))
	}
	// out-of-order input, end date must come from the whole set
	records[0], records[9] = records[9], records[0]

	result := Aggregate(records, 3, nil, nil)
	require.Equal(t, "2024-02-29", result.To.String())
	require.Equal(t, "2024-02-27", result.From.String())
	require.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29"}, dailyDates(result))

	var sum float64
	for _, r := range result.Daily {
		require.True(t, r.Date.Within(*result.From, *result.To))
		sum += r.Liters
	}
	require.Equal(t, sum, result.Totals.TotalLiters)
	require.InDelta(t, result.Totals.TotalLiters/1000, result.Totals.TotalM3, 1e-9)
}

func TestAggregateCalendarWindows(t *testing.T) {
	var records []model.NormalizedRecord
	for d := day("2024-02-28"); !d.After(day("2024-03-06").Time); d = d.AddDays(1) {
		records = append(records, withEuros(liters(d.String(), 100), 0.2))
	}
	price := utils.Float(2.0)

	result := Aggregate(records, 40, price, model.Metadata{"numero_compteur": "C1"})
	an := result.Analytics

	// 2024-03-06 is a Wednesday
	require.Equal(t, "2024-03-04", an.WeekStart.String())
	require.Equal(t, "2024-03-06", an.WeekEnd.String())
	require.Equal(t, 3, an.WeekDayCount)
	require.Equal(t, 300.0, an.WTDLiters)
	require.Equal(t, 0.6, an.WTDEuros)

	require.Equal(t, "2024-03-01", an.MonthStart.String())
	require.Equal(t, 6, an.MonthDayCount)
	require.Equal(t, 600.0, an.MTDLiters)
	require.InDelta(t, 0.6, an.MTDM3, 1e-12)
	require.Equal(t, 1.2, an.MTDEuros)
	require.Equal(t, 31, an.DaysInMonth)
	require.Equal(t, 6.2, *an.EstimateMonthEuros)

	require.Equal(t, 1.6, result.Totals.TotalEuros)
	require.Equal(t, 0.2, an.AvgDailyEuros)
	require.Equal(t, "2024-03-06", an.LastDate.String())
	require.Equal(t, 2.0, *result.PriceM3)
	require.Equal(t, "C1", result.Metadata["numero_compteur"])
}

func TestAggregateWeekStartsMonday(t *testing.T) {
	// 2024-03-04 is a Monday
	result := Aggregate([]model.NormalizedRecord{liters("2024-03-03", 100), liters("2024-03-04", 100)}, 40, nil, nil)
	require.Equal(t, "2024-03-04", result.Analytics.WeekStart.String())
	require.Equal(t, 1, result.Analytics.WeekDayCount)
}

func TestAggregateEmpty(t *testing.T) {
	result := Aggregate(nil, 40, utils.Float(4.32), nil)

	require.Equal(t, 40, result.Days)
	require.Nil(t, result.From)
	require.Nil(t, result.To)
	require.Equal(t, model.Totals{}, result.Totals)
	require.Empty(t, result.Daily)
	require.NotNil(t, result.Daily)
	require.Equal(t, model.LevelUnknown, result.Analytics.OverconsumptionLevel)
	require.Equal(t, 4.32, *result.PriceM3)
}

func TestAggregateClampsDays(t *testing.T) {
	result := Aggregate([]model.NormalizedRecord{liters("2024-01-01", 100), liters("2024-01-02", 200)}, 0, nil, nil)
	require.Equal(t, 1, result.Days)
	require.Equal(t, []string{"2024-01-02"}, dailyDates(result))
}

func TestAggregateDailySeries(t *testing.T) {
	result := Aggregate([]model.NormalizedRecord{
		liters("2024-01-03", 300),
		liters("2024-01-01", 100),
		liters("2024-01-02", 200),
	}, 40, nil, nil)

	expect := []model.NormalizedRecord{
		liters("2024-01-01", 100),
		liters("2024-01-02", 200),
		liters("2024-01-03", 300),
	}
	if diff := cmp.Diff(expect, result.Daily); diff != "" {
		t.Fatalf("daily series mismatch (-want +got):\n%s", diff)
	}
}
