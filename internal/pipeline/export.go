package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

// Export file names inside a run directory
const (
	ResultFile = "result.json"
	DailyFile  = "daily.csv"
)

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "json", "csv"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ExportManager writes run documents under an output directory
type ExportManager struct {
	output *utils.OutputManager
}

// NewExportManager creates an export manager rooted at dir
func NewExportManager(dir string) *ExportManager {
	return &ExportManager{output: utils.NewOutputManager(dir)}
}

// ExportReport writes the run document to <dir>/<run_id>/result.json and
// <dir>/latest.json, plus the daily series as CSV when the run succeeded.
func (em *ExportManager) ExportReport(report model.Report) []ExportResult {
	runID := report.Stats.RunID
	var results []ExportResult

	path, err := em.output.GetOutputFilePath(runID, ResultFile)
	results = append(results, em.export(path, err, func(p string) (int, error) {
		return writeJSON(p, report)
	}))
	results = append(results, em.export(em.output.LatestFilePath(), em.output.EnsureOutputDirExists(), func(p string) (int, error) {
		return writeJSON(p, report)
	}))

	if report.OK() {
		path, err := em.output.GetOutputFilePath(runID, DailyFile)
		results = append(results, em.export(path, err, func(p string) (int, error) {
			return writeDailyCSV(p, report.Result.Daily)
		}))
	}
	return results
}

// LoadLatest reads back the most recent document
func (em *ExportManager) LoadLatest() (model.Report, error) {
	return LoadReport(em.output.LatestFilePath())
}

// LoadReport reads a document written by ExportReport
func LoadReport(path string) (model.Report, error) {
	var report model.Report
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("failed to read document: %w", err)
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("failed to decode document: %w", err)
	}
	return report, nil
}

func (em *ExportManager) export(path string, prepErr error, write func(string) (int, error)) ExportResult {
	result := ExportResult{
		Type:       em.output.GetFileType(path),
		Path:       path,
		ExportedAt: time.Now(),
	}
	err := prepErr
	if err == nil {
		result.RecordCount, err = write(path)
	}
	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// writeJSON writes v as indented JSON, through a temp file so readers never
// see a partial document
func writeJSON(path string, v any) (int, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.json")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}
	return 1, nil
}

// writeDailyCSV exports the daily series to CSV format
func writeDailyCSV(path string, daily []model.NormalizedRecord) (n int, err error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			n, err = 0, fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"date", "liters", "m3", "euros"}); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range daily {
		euros := ""
		if r.Euros != nil {
			euros = strconv.FormatFloat(*r.Euros, 'f', 2, 64)
		}
		row := []string{
			r.Date.String(),
			strconv.FormatFloat(r.Liters, 'f', -1, 64),
			strconv.FormatFloat(r.M3, 'f', -1, 64),
			euros,
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(daily), nil
}
