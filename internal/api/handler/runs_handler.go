package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/internal/pipeline"
)

const (
	runsPrefix   = "/api/v1/runs/"
	maxBodyBytes = 32 << 20
)

// CreateRunRequest documents the body of POST /runs. Responses are raw
// captures, either {"url", "body"} envelopes or bare JSON bodies.
type CreateRunRequest struct {
	Days      *int              `json:"days,omitempty"`
	PriceM3   *float64          `json:"price_m3,omitempty"`
	Responses []json.RawMessage `json:"responses"`
}

// RunResponse wraps a run document with its identifier
type RunResponse struct {
	RunID    string       `json:"run_id"`
	Document model.Report `json:"document"`
}

// RunsHandler serves the run endpoints
type RunsHandler struct {
	runner *pipeline.Runner
	runs   *Registry
	log    logrus.FieldLogger
	newID  func() string
	now    func() time.Time
}

// NewRunsHandler creates the handler. runner.Config supplies the default
// window and price when a request leaves them out.
func NewRunsHandler(runner *pipeline.Runner, runs *Registry, log logrus.FieldLogger) *RunsHandler {
	return &RunsHandler{
		runner: runner,
		runs:   runs,
		log:    log,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// CreateRun runs the engine on posted captures
// @Summary Create a run
// @Description Run the mining and aggregation engine over the posted captures. Whole-run failures come back as an error document with status 200.
// @Tags runs
// @Accept json
// @Produce json
// @Param run body CreateRunRequest true "Captured portal responses"
// @Success 200 {object} RunResponse "Run document"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Router /runs [post]
func (h *RunsHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	opts, captures, err := h.parseRunRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts.RunID = h.newID()
	log := h.log.WithField("run_id", opts.RunID)
	log.WithField("captures", len(captures)).Info("run requested over API")

	report := h.runner.ProcessWith(captures, opts)
	h.runner.Deliver(r.Context(), report)
	h.runs.Add(report, h.now())

	writeJSON(w, http.StatusOK, RunResponse{RunID: opts.RunID, Document: report})
}

func (h *RunsHandler) parseRunRequest(body []byte) (pipeline.Options, []model.Capture, error) {
	var opts pipeline.Options
	if !gjson.ValidBytes(body) {
		return opts, nil, fmt.Errorf("invalid JSON payload")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return opts, nil, fmt.Errorf("request body must be an object")
	}

	opts.Days = h.runner.Config.Days
	if days := doc.Get("days"); days.Exists() && days.Type != gjson.Null {
		if days.Type != gjson.Number {
			return opts, nil, fmt.Errorf("days must be a number")
		}
		if days.Int() < 1 {
			return opts, nil, fmt.Errorf("days must be at least 1, got %s", days.Raw)
		}
		opts.Days = int(days.Int())
	}

	opts.PriceOverride = h.runner.Config.PriceM3
	if price := doc.Get("price_m3"); price.Exists() && price.Type != gjson.Null {
		if price.Type != gjson.Number {
			return opts, nil, fmt.Errorf("price_m3 must be a number")
		}
		v := price.Float()
		opts.PriceOverride = &v
	}

	responses := doc.Get("responses")
	if !responses.IsArray() {
		return opts, nil, fmt.Errorf("responses must be an array")
	}

	var captures []model.Capture
	i := 0
	responses.ForEach(func(_, raw gjson.Result) bool {
		c, err := pipeline.DecodeEnvelope([]byte(raw.Raw), fmt.Sprintf("request#%d", i))
		i++
		if err == nil && pipeline.IsPayload(c.Body) {
			captures = append(captures, c)
		}
		return true
	})
	return opts, captures, nil
}

// ListRuns lists the runs kept in memory
// @Summary List runs
// @Description Summaries of the most recent runs, newest first
// @Tags runs
// @Produce json
// @Success 200 {object} map[string]interface{} "Run summaries"
// @Router /runs [get]
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs := h.runs.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetLatestRun returns the most recent run document
// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} RunResponse "Run document"
// @Failure 404 {object} map[string]interface{} "No run yet"
// @Router /runs/latest [get]
func (h *RunsHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	summary, report, ok := h.runs.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no run recorded yet")
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{RunID: summary.RunID, Document: report})
}

// GetRun returns one run document
// @Summary Get run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunResponse "Run document"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, runsPrefix), "/")
	if runID == "" || strings.Contains(runID, "/") {
		writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	report, ok := h.runs.Get(runID)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{RunID: runID, Document: report})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}
