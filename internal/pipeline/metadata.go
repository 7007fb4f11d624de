package pipeline

import (
	"strings"
	"time"

	"go-water-pipeline/internal/model"
	"go-water-pipeline/pkg/utils"
)

const indexDateLayout = "2006-01-02T15:04:05"

// Accumulator carries the metadata and tariff price discovered during a run.
// Every field is written at most once.
type Accumulator struct {
	Metadata model.Metadata
	Price    *float64
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{Metadata: model.Metadata{}}
}

func (a *Accumulator) set(key string, v any) bool {
	return a.Metadata.SetIfAbsent(key, v)
}

func (a *Accumulator) setPrice(price float64) bool {
	if a.Price != nil {
		return false
	}
	a.Price = utils.Float(price)
	a.set(MetaPrice, price)
	return true
}

// MineMetadata walks a payload and stores the meter metadata it exposes into
// acc. It returns the number of fields this payload added.
func MineMetadata(root *model.Node, acc *Accumulator) int {
	m := &metadataMiner{acc: acc}
	model.Walk(root, m)
	return m.added
}

type metadataMiner struct {
	model.NopVisitor
	acc   *Accumulator
	added int
}

func (m *metadataMiner) VisitEntry(e model.Entry) {
	normalized := normalizeKey(e.Key)
	if target, ok := metadataTargets[normalized]; ok {
		m.collect(target, e.Value)
	}
	if priceAliases.Exact(normalized) && m.acc.Price == nil {
		if price, ok := scalarNumber(e.Value); ok && m.acc.setPrice(price) {
			m.added++
		}
	}
}

func (m *metadataMiner) collect(target metadataTarget, v *model.Node) {
	if v.IsNull() {
		return
	}
	switch target.kind {
	case numberMetadata:
		if f, ok := scalarNumber(v); ok {
			m.store(target.key, f)
		}
	case dateMetadata:
		if t, ok := scalarDate(v); ok {
			m.store(target.key, model.DayOf(t).String())
			return
		}
		m.store(target.key, v.Interface())
	case indexSeriesMetadata:
		m.collectIndex(v)
	default:
		m.store(target.key, v.Interface())
	}
}

func (m *metadataMiner) store(key string, v any) {
	if m.acc.set(key, v) {
		m.added++
	}
}

func (m *metadataMiner) collectIndex(v *model.Node) {
	if _, seen := m.acc.Metadata[MetaIndexLastValue]; seen {
		return
	}
	reading, ok := latestIndexReading(v)
	if !ok {
		return
	}
	m.store(MetaIndexLastValue, reading.value)
	m.store(MetaIndexLastDate, reading.date.Format(indexDateLayout))
	m.store(MetaIndexLastRaw, reading.raw)
}

type indexReading struct {
	value float64
	date  time.Time
	raw   string
}

// latestIndexReading scans a sequence of "value;date" strings and keeps the
// entry with the strictly latest date. Unparseable entries are skipped.
func latestIndexReading(n *model.Node) (indexReading, bool) {
	if n == nil || n.Kind != model.SequenceNode {
		return indexReading{}, false
	}
	var best indexReading
	found := false
	for _, item := range n.Items {
		if item == nil || item.Kind != model.ScalarNode {
			continue
		}
		raw, ok := item.Value.(string)
		if !ok {
			continue
		}
		valueText, dateText, ok := strings.Cut(raw, ";")
		if !ok {
			continue
		}
		value, okValue := utils.ParseNumber(valueText)
		date, okDate := utils.ParseDate(dateText)
		if !okValue || !okDate {
			continue
		}
		if !found || date.After(best.date) {
			best = indexReading{value: value, date: date, raw: raw}
			found = true
		}
	}
	return best, found
}

func scalarNumber(n *model.Node) (float64, bool) {
	if n == nil || n.Kind != model.ScalarNode {
		return 0, false
	}
	return utils.ParseNumber(n.Value)
}

func scalarDate(n *model.Node) (time.Time, bool) {
	if n == nil || n.Kind != model.ScalarNode {
		return time.Time{}, false
	}
	return utils.ParseDate(n.Value)
}
