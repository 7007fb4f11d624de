package hass

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"go-water-pipeline/internal/model"
)

// Client pushes sensor states to the Home Assistant REST API
type Client struct {
	http   *resty.Client
	prefix string
	log    logrus.FieldLogger
}

// Options configure a Client
type Options struct {
	BaseURL string
	Token   string
	Prefix  string
	Timeout time.Duration
	Retries int
}

// NewClient creates a client for the hub at opts.BaseURL
func NewClient(opts Options, log logrus.FieldLogger) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetAuthToken(opts.Token)
	client.SetHeader("Content-Type", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Retries > 0 {
		client.SetRetryCount(opts.Retries)
		client.SetRetryWaitTime(time.Second)
		client.AddRetryCondition(func(res *resty.Response, err error) bool {
			return err != nil || res.StatusCode() >= 500
		})
	}

	return &Client{http: client, prefix: opts.Prefix, log: log}
}

// Publish posts every projected entity. A failing entity does not stop the
// others; all failures are returned joined.
func (c *Client) Publish(ctx context.Context, result *model.AggregateResult) error {
	if result == nil {
		return nil
	}

	var errs []error
	for _, e := range Project(result, c.prefix) {
		if err := c.postState(ctx, e); err != nil {
			c.log.WithError(err).WithField("entity_id", e.ID).Warn("failed to publish state")
			errs = append(errs, err)
			continue
		}
		c.log.WithField("entity_id", e.ID).Debug("published state")
	}
	return errors.Join(errs...)
}

func (c *Client) postState(ctx context.Context, e Entity) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(e.State).
		Post("/api/states/" + e.ID)
	if err != nil {
		return fmt.Errorf("post %s: %w", e.ID, err)
	}
	if res.IsError() {
		return fmt.Errorf("post %s: unexpected status %s", e.ID, res.Status())
	}
	return nil
}
