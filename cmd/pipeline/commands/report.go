package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/internal/pipeline"
)

var reportFile string

func init() {
	reportCmd.Flags().StringVar(&reportFile, "file", "", "Document to render; defaults to the latest export.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--file <result.json>]",
	Short: "Renders a saved run document as tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			report model.Report
			err    error
		)
		if reportFile != "" {
			report, err = pipeline.LoadReport(reportFile)
		} else {
			report, err = pipeline.NewExportManager(cfg.ExportDir).LoadLatest()
		}
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		renderReport(os.Stdout, report)
		return nil
	},
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderReport(w io.Writer, report model.Report) {
	if report.Error != nil {
		t := newTable(w, "Erreur")
		t.AppendRow(table.Row{"error", report.Error.Message})
		if report.Error.Hint != "" {
			t.AppendRow(table.Row{"hint", report.Error.Hint})
		}
		for _, url := range report.Error.Responses {
			t.AppendRow(table.Row{"response", url})
		}
		t.Render()
		return
	}
	result := report.Result
	if result == nil {
		return
	}

	t := newTable(w, "Totaux")
	t.AppendHeader(table.Row{"Jours", "Du", "Au", "Prix m3", "Litres", "m3", "EUR"})
	t.AppendRow(table.Row{
		result.Days, dayCell(result.From), dayCell(result.To), floatCell(result.PriceM3),
		result.Totals.TotalLiters, result.Totals.TotalM3, result.Totals.TotalEuros,
	})
	t.Render()

	an := result.Analytics
	t = newTable(w, "Analyse")
	t.AppendRows([]table.Row{
		{"avg_daily_liters", an.AvgDailyLiters},
		{"avg_daily_m3", an.AvgDailyM3},
		{"avg_daily_euros", an.AvgDailyEuros},
		{"week", fmt.Sprintf("%s → %s (%d j)", dayCell(an.WeekStart), dayCell(an.WeekEnd), an.WeekDayCount)},
		{"wtd_m3", an.WTDM3},
		{"month", fmt.Sprintf("%s → %s (%d/%d j)", dayCell(an.MonthStart), dayCell(an.MonthEnd), an.MonthDayCount, an.DaysInMonth)},
		{"mtd_m3", an.MTDM3},
		{"estimate_month_euros", floatCell(an.EstimateMonthEuros)},
		{"overconsumption_ratio", floatCell(an.OverconsumptionRatio)},
		{"overconsumption_level", an.OverconsumptionLevel},
	})
	t.Render()

	t = newTable(w, "Relevés")
	t.AppendHeader(table.Row{"Date", "Litres", "m3", "EUR"})
	for _, rec := range result.Daily {
		t.AppendRow(table.Row{rec.Date.String(), rec.Liters, rec.M3, floatCell(rec.Euros)})
	}
	t.Render()

	if len(result.Metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(result.Metadata))
	for k := range result.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t = newTable(w, "Compteur")
	for _, k := range keys {
		t.AppendRow(table.Row{k, result.Metadata[k]})
	}
	t.Render()
}

func dayCell(d *model.Day) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func floatCell(v *float64) any {
	if v == nil {
		return "-"
	}
	return *v
}
