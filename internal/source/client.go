package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

// Client queries the remote sales API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(cfg config.SourceConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.URL,
		logger:     logger,
	}
}

func (c *Client) Fetch(ctx context.Context, q models.Query) (records []models.SalesRecord, err error) {
	ctx, span := observability.StartSpan(ctx, "source.fetch")
	span.SetTag("query", q.Key())
	start := time.Now()
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish(ctx, c.logger)
	}()

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	// The API expects both parameters, empty meaning "no filter".
	query := endpoint.Query()
	query.Set("regiao", q.Region)
	query.Set("ano", q.Year)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request sales api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sales api responded with status %s", resp.Status)
	}

	records, err = DecodeRecords(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched sales records",
		"query", q.Key(),
		"records", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}
