package model

import (
	"encoding/json"
	"errors"
)

// Overconsumption levels
const (
	LevelUnknown  = "unknown"
	LevelNormal   = "normal"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

var (
	ErrNoPayloadsCaptured     = errors.New("no payloads captured")
	ErrNoConsumptionExtracted = errors.New("no consumption extracted")
)

// Metadata is the open mapping of canonical meter metadata, first value wins
type Metadata map[string]any

// SetIfAbsent stores v under key unless the key is already set
func (m Metadata) SetIfAbsent(key string, v any) bool {
	if _, exists := m[key]; exists {
		return false
	}
	m[key] = v
	return true
}

// Totals sums the retained window
type Totals struct {
	TotalLiters float64 `json:"total_liters"`
	TotalM3     float64 `json:"total_m3"`
	TotalEuros  float64 `json:"total_euros"`
}

// Analytics holds the derived usage and billing figures
type Analytics struct {
	AvgDailyLiters float64 `json:"avg_daily_liters"`
	AvgDailyM3     float64 `json:"avg_daily_m3"`
	AvgDailyEuros  float64 `json:"avg_daily_euros"`

	WeekStart    *Day    `json:"week_start"`
	WeekEnd      *Day    `json:"week_end"`
	WTDLiters    float64 `json:"wtd_liters"`
	WTDM3        float64 `json:"wtd_m3"`
	WTDEuros     float64 `json:"wtd_euros"`
	WeekDayCount int     `json:"week_day_count"`

	MonthStart         *Day     `json:"month_start"`
	MonthEnd           *Day     `json:"month_end"`
	MTDLiters          float64  `json:"mtd_liters"`
	MTDM3              float64  `json:"mtd_m3"`
	MTDEuros           float64  `json:"mtd_euros"`
	MonthDayCount      int      `json:"month_day_count"`
	DaysInMonth        int      `json:"days_in_month"`
	EstimateMonthEuros *float64 `json:"estimate_month_euros"`

	LastDate             *Day     `json:"last_date"`
	OverconsumptionRatio *float64 `json:"overconsumption_ratio"`
	OverconsumptionLevel string   `json:"overconsumption_level"`
}

// AggregateResult is the success document handed to the publishing sink
type AggregateResult struct {
	Days      int                `json:"days"`
	From      *Day               `json:"from"`
	To        *Day               `json:"to"`
	Totals    Totals             `json:"totals"`
	PriceM3   *float64           `json:"price_m3"`
	Metadata  Metadata           `json:"metadata"`
	Analytics Analytics          `json:"analytics"`
	Daily     []NormalizedRecord `json:"daily"`
}

// Last returns the most recent day of the series
func (r *AggregateResult) Last() (NormalizedRecord, bool) {
	if r == nil || len(r.Daily) == 0 {
		return NormalizedRecord{}, false
	}
	return r.Daily[len(r.Daily)-1], true
}

// ErrorDocument is the whole-run failure document
type ErrorDocument struct {
	Message   string   `json:"error"`
	Hint      string   `json:"hint,omitempty"`
	Responses []string `json:"responses,omitempty"`

	kind error
}

// NewNoPayloadsDocument reports that the session captured nothing
func NewNoPayloadsDocument() *ErrorDocument {
	return &ErrorDocument{
		Message: "Aucune réponse JSON capturée. Vérifiez si le site charge des données via API.",
		Hint:    "Lancer en mode headless=false pour voir le navigateur.",
		kind:    ErrNoPayloadsCaptured,
	}
}

// NewNoConsumptionDocument reports that payloads held no usable record
func NewNoConsumptionDocument(urls []string) *ErrorDocument {
	if urls == nil {
		urls = []string{}
	}
	return &ErrorDocument{
		Message:   "Données JSON capturées mais pas de consommation détectée.",
		Responses: urls,
		kind:      ErrNoConsumptionExtracted,
	}
}

// Err exposes the sentinel matching the failure
func (d *ErrorDocument) Err() error {
	return d.kind
}

func (d *ErrorDocument) MarshalJSON() ([]byte, error) {
	out := map[string]any{"error": d.Message}
	if d.Hint != "" {
		out["hint"] = d.Hint
	}
	if d.Responses != nil {
		out["responses"] = d.Responses
	}
	return json.Marshal(out)
}

// Report is the outcome of one run: either a result or an error document
type Report struct {
	Result *AggregateResult
	Error  *ErrorDocument
	Stats  RunStats
}

// OK reports whether the run produced an AggregateResult
func (r Report) OK() bool {
	return r.Error == nil && r.Result != nil
}

func (r Report) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(r.Error)
	}
	return json.Marshal(r.Result)
}

func (r *Report) UnmarshalJSON(b []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		var doc struct {
			Message   string   `json:"error"`
			Hint      string   `json:"hint"`
			Responses []string `json:"responses"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return err
		}
		r.Error = &ErrorDocument{Message: doc.Message, Hint: doc.Hint, Responses: doc.Responses, kind: ErrNoPayloadsCaptured}
		if doc.Responses != nil {
			r.Error.kind = ErrNoConsumptionExtracted
		}
		return nil
	}
	r.Result = &AggregateResult{}
	return json.Unmarshal(b, r.Result)
}
