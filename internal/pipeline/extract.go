package pipeline

import "go-water-pipeline/internal/model"

// MineRecords walks a payload and returns every mapping exposing both a
// date-like and a volume-like key, in pre-order. A mapping can both yield a
// record and contain nested ones.
func MineRecords(root *model.Node) []model.RawRecord {
	m := &recordMiner{}
	model.Walk(root, m)
	return m.records
}

type recordMiner struct {
	model.NopVisitor
	records []model.RawRecord
}

func (m *recordMiner) VisitMapping(n *model.Node) bool {
	date, hasDate := FindKey(n, dateAliases)
	volume, hasVolume := FindKey(n, volumeAliases)
	if !hasDate || !hasVolume {
		return true
	}

	rec := model.RawRecord{Date: date.Value, Volume: volume.Value, Source: n}
	if cost, ok := FindKey(n, costAliases); ok {
		rec.Cost = cost.Value
	}
	if unit, ok := FindKey(n, unitAliases); ok {
		rec.Unit = unit.Value
	}
	m.records = append(m.records, rec)
	return true
}
