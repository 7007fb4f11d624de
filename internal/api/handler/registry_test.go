package handler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/model"
)

func reportFor(runID string) model.Report {
	day := model.NewDay(2024, 3, 2)
	return model.Report{
		Result: &model.AggregateResult{
			Days:      40,
			From:      &day,
			To:        &day,
			Analytics: model.Analytics{OverconsumptionLevel: model.LevelNormal},
		},
		Stats: model.RunStats{RunID: runID, Payloads: 1, RecordsKept: 1},
	}
}

func TestRegistryEvictsOldest(t *testing.T) {
	reg := NewRegistry(2)
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		reg.Add(reportFor(fmt.Sprintf("run-%d", i)), now)
	}

	_, ok := reg.Get("run-1")
	require.False(t, ok)

	var ids []string
	for _, s := range reg.List() {
		ids = append(ids, s.RunID)
	}
	require.Equal(t, []string{"run-3", "run-2"}, ids)

	summary, _, ok := reg.Latest()
	require.True(t, ok)
	require.Equal(t, "run-3", summary.RunID)
	require.Equal(t, "ok", summary.Status)
	require.Equal(t, model.LevelNormal, summary.Level)
}

func TestRegistrySummarizesErrors(t *testing.T) {
	reg := NewRegistry(0)
	summary := reg.Add(model.Report{
		Error: model.NewNoPayloadsDocument(),
		Stats: model.RunStats{RunID: "run-err"},
	}, time.Now())

	require.Equal(t, "error", summary.Status)
	require.Equal(t, model.NewNoPayloadsDocument().Message, summary.Error)
	require.Nil(t, summary.From)
}
