package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"go-water-pipeline/internal/model"
)

// ------------------- Ingestion -------------------

// Ingester reads captured responses from the configured sources
type Ingester struct {
	client *resty.Client
	log    logrus.FieldLogger
}

// NewIngester creates an ingester; client is used for url sources
func NewIngester(client *resty.Client, log logrus.FieldLogger) *Ingester {
	if client == nil {
		client = resty.New()
	}
	return &Ingester{client: client, log: log}
}

// StartIngestion reads all sources in parallel. Captures come back in source
// order, then file order within a source, so first-wins metadata is
// reproducible. Source failures are returned alongside whatever succeeded.
func (in *Ingester) StartIngestion(ctx context.Context, sources []model.Source) ([]model.Capture, []error) {
	results := make([][]model.Capture, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, s model.Source) {
			defer wg.Done()
			results[i], errs[i] = in.IngestSource(ctx, s)
		}(i, src)
	}
	wg.Wait()

	var captures []model.Capture
	var failures []error
	for i := range sources {
		captures = append(captures, results[i]...)
		if errs[i] != nil {
			failures = append(failures, errs[i])
		}
	}
	return captures, failures
}

// IngestSource reads a single source (dir/file/url)
func (in *Ingester) IngestSource(ctx context.Context, source model.Source) ([]model.Capture, error) {
	log := in.log.WithFields(logrus.Fields{"source": source.URL, "type": source.Type})
	log.Debug("starting ingestion")

	var (
		captures []model.Capture
		err      error
	)
	switch strings.ToLower(source.Type) {
	case "dir":
		captures, err = in.ingestDir(ctx, source.URL, log)
	case "file":
		captures, err = in.ingestFile(source.URL, log)
	case "url":
		captures, err = in.ingestURL(ctx, source.URL, log)
	default:
		err = fmt.Errorf("unknown source type: %s", source.Type)
	}
	if err != nil {
		return captures, err
	}
	log.WithField("captures", len(captures)).Debug("finished ingestion")
	return captures, nil
}

// ------------------- Directory Ingestion -------------------
func (in *Ingester) ingestDir(ctx context.Context, dir string, log logrus.FieldLogger) ([]model.Capture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list capture directory: %w", err)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to open capture directory: %w", err)
	}
	sort.Strings(paths)

	var captures []model.Capture
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return captures, err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.WithError(err).WithField("file", p).Warn("skipping unreadable capture")
			continue
		}
		captures = appendCapture(captures, data, p, log)
	}
	return captures, nil
}

// ------------------- File Ingestion -------------------

// ingestFile reads a JSON array of envelopes or newline-delimited envelopes
func (in *Ingester) ingestFile(path string, log logrus.FieldLogger) ([]model.Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if gjson.ValidBytes(trimmed) {
		doc := gjson.ParseBytes(trimmed)
		if doc.IsArray() {
			var captures []model.Capture
			for i, item := range doc.Array() {
				c := captureFromResult(item, fmt.Sprintf("%s#%d", path, i))
				captures = appendIfPayload(captures, c, log)
			}
			return captures, nil
		}
		return appendIfPayload(nil, captureFromResult(doc, path), log), nil
	}

	var captures []model.Capture
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		captures = appendCapture(captures, text, fmt.Sprintf("%s:%d", path, line), log)
	}
	if err := scanner.Err(); err != nil {
		return captures, fmt.Errorf("failed to read capture file: %w", err)
	}
	return captures, nil
}

// ------------------- URL Ingestion -------------------
func (in *Ingester) ingestURL(ctx context.Context, url string, log logrus.FieldLogger) ([]model.Capture, error) {
	resp, err := in.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to GET captures: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to GET captures: %s", resp.Status())
	}
	return appendCapture(nil, resp.Body(), url, log), nil
}

func appendCapture(captures []model.Capture, data []byte, origin string, log logrus.FieldLogger) []model.Capture {
	c, err := DecodeEnvelope(data, origin)
	if err != nil {
		log.WithField("origin", origin).Warn("skipping capture that is not valid JSON")
		return captures
	}
	return appendIfPayload(captures, c, log)
}

func appendIfPayload(captures []model.Capture, c model.Capture, log logrus.FieldLogger) []model.Capture {
	if !IsPayload(c.Body) {
		log.WithField("origin", c.URL).Debug("skipping scalar capture")
		return captures
	}
	log.WithField("origin", c.URL).Debug("captured JSON payload")
	return append(captures, c)
}
