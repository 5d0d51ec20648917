// Package fred implements a client for the St. Louis Fed FRED API
// (series/observations endpoint).
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/macrolabs/laborcast/internal/platform/http"
	"github.com/macrolabs/laborcast/models"
)

// Client is the FRED API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new FRED client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new FRED API client.
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.stlouisfed.org"
	}
	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "fred_client").Logger(),
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// FetchSeries fetches the latest observations of one series, oldest first.
// FRED reports missing values as "."; those are skipped.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, limit int) ([]models.Observation, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("sort_order", "desc")
	params.Set("limit", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/fred/series/observations?%s", c.baseURL, params.Encode())

	c.logger.Debug().Str("series_id", seriesID).Int("limit", limit).Msg("Fetching FRED series")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data observationsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing FRED JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.ErrorCode != 0 {
		return nil, fmt.Errorf("FRED API error %d: %s", data.ErrorCode, data.ErrorMessage)
	}
	if len(data.Observations) == 0 {
		return nil, fmt.Errorf("series %s: empty data returned", seriesID)
	}

	var observations []models.Observation
	for _, o := range data.Observations {
		if o.Value == "." {
			continue
		}
		value, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("series %s: bad value %q: %w", seriesID, o.Value, err)
		}
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return nil, fmt.Errorf("series %s: bad date %q: %w", seriesID, o.Date, err)
		}
		observations = append(observations, models.Observation{Date: date, Value: value})
	}

	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})

	c.logger.Debug().Str("series_id", seriesID).Int("count", len(observations)).Msg("Fetched FRED series")
	return observations, nil
}
