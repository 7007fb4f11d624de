package pipeline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

func TestProcessNoPayloads(t *testing.T) {
	report := Process(nil, Options{Days: 40})

	require.False(t, report.OK())
	require.True(t, errors.Is(report.Error.Err(), model.ErrNoPayloadsCaptured))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 2)
	require.NotEmpty(t, doc["error"])
	require.NotEmpty(t, doc["hint"])
	require.NotContains(t, doc, "totals")
	require.NotContains(t, doc, "daily")
}

func TestProcessNoConsumption(t *testing.T) {
	report := Process([]model.Capture{
		capture(t, "https://portal/api/profile", `{"numeroCompteur": "C1"}`),
		capture(t, "https://portal/api/history", `{"rows": [{"date": "garbage", "volume": 12}]}`),
	}, Options{Days: 40})

	require.False(t, report.OK())
	require.True(t, errors.Is(report.Error.Err(), model.ErrNoConsumptionExtracted))
	require.Equal(t, []string{"https://portal/api/profile", "https://portal/api/history"}, report.Error.Responses)
	require.Equal(t, 1, report.Stats.RecordsDropped)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 2)
	require.Contains(t, doc, "responses")
}

func TestProcessPriceBecomesKnownMidRun(t *testing.T) {
	report := Process([]model.Capture{
		capture(t, "a", `{"data": [{"dateReleve": "01/03/2024", "consommation": 100}]}`),
		capture(t, "b", `{"tarif": {"prixMoyenEau": "4,00"}, "data": [{"dateReleve": "02/03/2024", "consommation": 200}]}`),
	}, Options{Days: 40})

	require.True(t, report.OK())
	result := report.Result
	require.Len(t, result.Daily, 2)
	require.Nil(t, result.Daily[0].Euros)
	require.Equal(t, 0.8, *result.Daily[1].Euros)
	require.Equal(t, 4.0, *result.PriceM3)
	require.Equal(t, 4.0, result.Metadata[MetaPrice])
	require.Equal(t, 0.8, result.Totals.TotalEuros)
}

func TestProcessPriceOverride(t *testing.T) {
	report := Process([]model.Capture{
		capture(t, "a", `{"prixMoyenEau": 4.32, "data": [{"date": "2024-03-01", "volume": 500}]}`),
	}, Options{Days: 40, PriceOverride: utils.Float(2)})

	require.True(t, report.OK())
	require.Equal(t, 2.0, *report.Result.PriceM3)
	require.Equal(t, 4.32, report.Result.Metadata[MetaPrice])
	require.Equal(t, 1.0, *report.Result.Daily[0].Euros)
}

func TestProcessStatsAndDeterminism(t *testing.T) {
	captures := []model.Capture{
		capture(t, "history", `{"values": [
			{"date": "2024-03-01", "volume": 120},
			{"date": "2024-03-02", "volume": 140},
			{"date": "bad", "volume": 1}
		], "consommationMax": "0,9"}`),
		capture(t, "history-again", `[{"date": "2024-03-02", "volume": 140}]`),
	}

	first := Process(captures, Options{RunID: "run-1"})
	second := Process(captures, Options{RunID: "run-2"})

	require.Equal(t, "run-1", first.Stats.RunID)
	require.Equal(t, 2, first.Stats.Payloads)
	require.Equal(t, 4, first.Stats.RecordsMined)
	require.Equal(t, 1, first.Stats.RecordsDropped)
	require.Equal(t, 2, first.Stats.RecordsKept)
	require.Equal(t, []model.SourceMetrics{
		{SourceURL: "history", RecordsMined: 3, RecordsNormalized: 2, RecordsDropped: 1, MetadataFields: 1},
		{SourceURL: "history-again", RecordsMined: 1, RecordsNormalized: 1},
	}, first.Stats.Sources)
	require.Equal(t, DefaultDays, first.Result.Days)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))
}

func TestProcessSuccessDocumentShape(t *testing.T) {
	report := Process([]model.Capture{
		capture(t, "a", `{"date": "2024-03-01", "volume": 120}`),
	}, Options{Days: 7})

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{"days", "from", "to", "totals", "price_m3", "metadata", "analytics", "daily"} {
		require.Contains(t, doc, key)
	}
	require.NotContains(t, doc, "error")
	require.Equal(t, []any{map[string]any{"date": "2024-03-01", "liters": 120.0, "m3": 0.12, "euros": nil}}, doc["daily"])

	var back model.Report
	require.NoError(t, json.Unmarshal(data, &back))
	require.True(t, back.OK())
	require.Equal(t, "2024-03-01", back.Result.To.String())
}

func TestProcessIgnoresMillisecondTimestamps(t *testing.T) {
	report := Process([]model.Capture{
		capture(t, "history", `{"rows": [
			{"date": "2024-03-14", "volume": 300},
			{"date": "2024-03-15", "volume": 320},
			{"lastModifiedDate": 1710460800000, "consommation": 12}
		]}`),
	}, Options{Days: 40})

	require.True(t, report.OK())
	result := report.Result
	require.Equal(t, "2024-03-15", result.To.String())
	require.Equal(t, []string{"2024-03-14", "2024-03-15"}, dailyDates(result))
	require.Equal(t, 620.0, result.Totals.TotalLiters)
	require.Equal(t, 1, report.Stats.RecordsDropped)
}
