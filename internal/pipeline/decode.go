package pipeline

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"go-water-pipeline/internal/model"
)

// ErrInvalidJSON is returned for bodies that are not well-formed JSON
var ErrInvalidJSON = errors.New("invalid JSON")

// DecodeNode parses a JSON document into a Node tree. Mapping keys keep their
// wire order and duplicate keys are all retained.
func DecodeNode(data []byte) (*model.Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return nodeFromResult(gjson.ParseBytes(data)), nil
}

// DecodeEnvelope parses a captured response. A document shaped as
// {"url": text, "body": JSON} is unwrapped; anything else is a bare body
// attributed to fallbackURL.
func DecodeEnvelope(data []byte, fallbackURL string) (model.Capture, error) {
	if !gjson.ValidBytes(data) {
		return model.Capture{}, fmt.Errorf("%s: %w", fallbackURL, ErrInvalidJSON)
	}
	return captureFromResult(gjson.ParseBytes(data), fallbackURL), nil
}

func captureFromResult(doc gjson.Result, fallbackURL string) model.Capture {
	if doc.IsObject() {
		body := doc.Get("body")
		url := doc.Get("url")
		if body.Exists() && url.Type == gjson.String {
			return model.Capture{URL: url.String(), Body: nodeFromResult(body)}
		}
	}
	return model.Capture{URL: fallbackURL, Body: nodeFromResult(doc)}
}

// IsPayload reports whether a body is structured (mapping or sequence)
func IsPayload(n *model.Node) bool {
	return n != nil && (n.Kind == model.MappingNode || n.Kind == model.SequenceNode)
}

func nodeFromResult(r gjson.Result) *model.Node {
	switch {
	case r.IsObject():
		n := model.NewMapping()
		r.ForEach(func(key, value gjson.Result) bool {
			n.Entries = append(n.Entries, model.Entry{Key: key.String(), Value: nodeFromResult(value)})
			return true
		})
		return n
	case r.IsArray():
		n := model.NewSequence()
		r.ForEach(func(_, value gjson.Result) bool {
			n.Items = append(n.Items, nodeFromResult(value))
			return true
		})
		return n
	}

	switch r.Type {
	case gjson.True, gjson.False:
		return model.NewScalar(r.Bool())
	case gjson.Number:
		return model.NewScalar(r.Float())
	case gjson.String:
		return model.NewScalar(r.String())
	default:
		return model.NewScalar(nil)
	}
}
