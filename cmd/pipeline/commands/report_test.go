package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

func TestRenderReportResult(t *testing.T) {
	d1 := model.NewDay(2024, 3, 14)
	d2 := model.NewDay(2024, 3, 15)
	report := model.Report{Result: &model.AggregateResult{
		Days:     40,
		From:     &d1,
		To:       &d2,
		PriceM3:  utils.Float(4.32),
		Metadata: model.Metadata{"numero_compteur": "C123"},
		Analytics: model.Analytics{
			OverconsumptionLevel: model.LevelHigh,
		},
		Daily: []model.NormalizedRecord{
			{Date: d1, Liters: 250, M3: 0.25},
			{Date: d2, Liters: 300, M3: 0.3, Euros: utils.Float(1.3)},
		},
	}}

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()

	require.Contains(t, out, "2024-03-14")
	require.Contains(t, out, "2024-03-15")
	require.Contains(t, out, "high")
	require.Contains(t, out, "C123")
	require.Contains(t, out, "4.32")
}

func TestRenderReportError(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, model.Report{Error: model.NewNoConsumptionDocument([]string{"https://portal/api"})})

	out := buf.String()
	require.Contains(t, out, "https://portal/api")
	require.Contains(t, out, "pas de consommation")
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printDocument(&buf, model.Report{Error: model.NewNoPayloadsDocument()}))
	require.Contains(t, buf.String(), "\n  \"error\": \"Aucune réponse JSON capturée.")
}
