package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/model"
)

func mustDecode(t *testing.T, doc string) *model.Node {
	t.Helper()
	n, err := DecodeNode([]byte(doc))
	require.NoError(t, err)
	return n
}

func capture(t *testing.T, url, doc string) model.Capture {
	t.Helper()
	return model.Capture{URL: url, Body: mustDecode(t, doc)}
}

func day(s string) model.Day {
	d, err := model.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func liters(date string, l float64) model.NormalizedRecord {
	return model.NormalizedRecord{Date: day(date), Liters: l, M3: l / 1000}
}

func withEuros(r model.NormalizedRecord, euros float64) model.NormalizedRecord {
	r.Euros = &euros
	return r
}
