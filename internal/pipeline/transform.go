package pipeline

import (
	"strings"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

// MagnitudeHeuristic decides the unit of a volume that carries no usable
// unit field
type MagnitudeHeuristic interface {
	IsLiters(volume float64) bool
}

// ThresholdHeuristic treats volumes above Threshold as liters and the rest
// as cubic meters
type ThresholdHeuristic struct {
	Threshold float64
}

func (h ThresholdHeuristic) IsLiters(volume float64) bool {
	return volume > h.Threshold
}

// DefaultHeuristic matches typical household use: a day is hundreds of
// liters or well under one cubic meter
var DefaultHeuristic MagnitudeHeuristic = ThresholdHeuristic{Threshold: 50}

type volumeUnit int

const (
	unitUnknown volumeUnit = iota
	unitLiters
	unitCubicMeters
)

// Normalizer turns raw records into canonical daily records
type Normalizer struct {
	Heuristic MagnitudeHeuristic
}

// NewNormalizer returns a normalizer using h, or DefaultHeuristic when nil
func NewNormalizer(h MagnitudeHeuristic) Normalizer {
	if h == nil {
		h = DefaultHeuristic
	}
	return Normalizer{Heuristic: h}
}

// Normalize converts rec using the tariff price known so far. It reports
// false when the date or the volume cannot be read.
func (nz Normalizer) Normalize(rec model.RawRecord, price *float64) (model.NormalizedRecord, bool) {
	dateNode := rec.Date
	if e, ok := findExact(rec.Source, indexDateKey); ok && truthy(e.Value) {
		dateNode = e.Value
	}
	date, ok := scalarDate(dateNode)
	if !ok {
		return model.NormalizedRecord{}, false
	}
	volume, ok := scalarNumber(rec.Volume)
	if !ok {
		return model.NormalizedRecord{}, false
	}

	var liters float64
	switch nz.unitOf(rec.Unit, volume) {
	case unitLiters:
		liters = volume
	default:
		liters = volume * 1000
	}

	out := model.NormalizedRecord{
		Date:   model.DayOf(date),
		Liters: liters,
		M3:     liters / 1000,
		Raw:    rec.Source,
	}

	if cost, ok := scalarNumber(rec.Cost); ok {
		out.Euros = utils.Float(cost)
	} else if price != nil {
		out.Euros = utils.Float(out.M3 * *price)
	}
	out.Euros = utils.RoundMoneyPtr(out.Euros)
	return out, true
}

func (nz Normalizer) unitOf(unit *model.Node, volume float64) volumeUnit {
	switch parseUnit(unit) {
	case unitLiters:
		return unitLiters
	case unitCubicMeters:
		return unitCubicMeters
	}
	h := nz.Heuristic
	if h == nil {
		h = DefaultHeuristic
	}
	if h.IsLiters(volume) {
		return unitLiters
	}
	return unitCubicMeters
}

func parseUnit(n *model.Node) volumeUnit {
	if n == nil || n.Kind != model.ScalarNode {
		return unitUnknown
	}
	text, ok := n.Value.(string)
	if !ok {
		return unitUnknown
	}
	text = strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(text, "litre"), strings.Contains(text, "liter"), text == "l", text == "lt":
		return unitLiters
	case strings.Contains(text, "m3"), strings.Contains(text, "m^3"), strings.Contains(text, "m³"):
		return unitCubicMeters
	}
	return unitUnknown
}

// truthy mirrors how the portal marks an absent field: null, "", 0 or false
func truthy(n *model.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind != model.ScalarNode {
		return len(n.Entries) > 0 || len(n.Items) > 0
	}
	switch v := n.Value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}
