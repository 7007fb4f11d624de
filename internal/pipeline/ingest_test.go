package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-water-pipeline/internal/logging"
	"go-water-pipeline/internal/model"
)

func writeCapture(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func urls(captures []model.Capture) []string {
	var out []string
	for _, c := range captures {
		out = append(out, c.URL)
	}
	return out
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, dir, "02-history.json", `{"url": "https://portal/history", "body": {"rows": []}}`)
	bare := writeCapture(t, dir, "01-profile.json", `{"numeroCompteur": "C1"}`)
	writeCapture(t, dir, "03-broken.json", `{"url": `)
	writeCapture(t, dir, "04-scalar.json", `"just text"`)
	writeCapture(t, dir, "notes.txt", `ignored`)

	in := NewIngester(nil, logging.Discard())
	captures, err := in.IngestSource(context.Background(), model.Source{Type: "dir", URL: dir})
	require.NoError(t, err)
	require.Equal(t, []string{bare, "https://portal/history"}, urls(captures))
}

func TestIngestMissingDir(t *testing.T) {
	in := NewIngester(nil, logging.Discard())
	_, err := in.IngestSource(context.Background(), model.Source{Type: "dir", URL: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestIngestFileArray(t *testing.T) {
	p := writeCapture(t, t.TempDir(), "captures.json", `[
		{"url": "https://portal/a", "body": {"a": 1}},
		{"url": "https://portal/b", "body": [1, 2]},
		{"url": "https://portal/c", "body": null}
	]`)

	in := NewIngester(nil, logging.Discard())
	captures, err := in.IngestSource(context.Background(), model.Source{Type: "file", URL: p})
	require.NoError(t, err)
	require.Equal(t, []string{"https://portal/a", "https://portal/b"}, urls(captures))
}

func TestIngestFileLines(t *testing.T) {
	p := writeCapture(t, t.TempDir(), "captures.ndjson", `{"url": "https://portal/a", "body": {"a": 1}}

not json at all
{"url": "https://portal/b", "body": {"b": 2}}
`)

	in := NewIngester(nil, logging.Discard())
	captures, err := in.IngestSource(context.Background(), model.Source{Type: "file", URL: p})
	require.NoError(t, err)
	require.Equal(t, []string{"https://portal/a", "https://portal/b"}, urls(captures))
}

func TestIngestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"date": "2024-03-01", "volume": 100}]}`))
	}))
	defer srv.Close()

	in := NewIngester(nil, logging.Discard())
	captures, err := in.IngestSource(context.Background(), model.Source{Type: "url", URL: srv.URL + "/conso"})
	require.NoError(t, err)
	require.Len(t, captures, 1)
	require.Equal(t, srv.URL+"/conso", captures[0].URL)

	_, err = in.IngestSource(context.Background(), model.Source{Type: "url", URL: srv.URL + "/missing"})
	require.Error(t, err)
}

func TestStartIngestionKeepsSourceOrder(t *testing.T) {
	dir := t.TempDir()
	first := writeCapture(t, dir, "first.json", `{"url": "one", "body": {}}`)
	second := writeCapture(t, dir, "second.json", `[{"url": "two", "body": {}}, {"url": "three", "body": {}}]`)

	in := NewIngester(nil, logging.Discard())
	captures, errs := in.StartIngestion(context.Background(), []model.Source{
		{Type: "file", URL: first},
		{Type: "ftp", URL: "nowhere"},
		{Type: "file", URL: second},
	})
	require.Len(t, errs, 1)
	require.Equal(t, []string{"one", "two", "three"}, urls(captures))
}
