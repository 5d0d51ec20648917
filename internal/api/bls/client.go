// Package bls implements a client for the BLS Public Data API v2
// (timeseries/data endpoint).
package bls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/macrolabs/laborcast/internal/platform/http"
	"github.com/macrolabs/laborcast/models"
)

// Client is the BLS API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOptions holds options for creating a new BLS client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new BLS API client.
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.bls.gov"
	}
	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "bls_client").Logger(),
		now:    time.Now,
	}
}

type seriesRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type seriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// FetchSeries fetches the latest observations of one series, oldest first.
// Annual averages (period M13) are skipped; monthly and quarterly periods are
// mapped to the first day of the period.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, limit int) ([]models.Observation, error) {
	endYear := c.now().Year()
	startYear := endYear - limit/12 - 1

	payload := seriesRequest{
		SeriesID:        []string{seriesID},
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(endYear),
		RegistrationKey: c.apiKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	reqURL := c.baseURL + "/publicAPI/v2/timeseries/data/"

	c.logger.Debug().Str("series_id", seriesID).Int("start_year", startYear).Msg("Fetching BLS series")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data seriesResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing BLS JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Status != "REQUEST_SUCCEEDED" {
		return nil, fmt.Errorf("BLS API error: %s %v", data.Status, data.Message)
	}
	if len(data.Results.Series) == 0 || len(data.Results.Series[0].Data) == 0 {
		return nil, fmt.Errorf("series %s: empty data returned", seriesID)
	}

	var observations []models.Observation
	for _, d := range data.Results.Series[0].Data {
		date, ok, err := periodToDate(d.Year, d.Period)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", seriesID, err)
		}
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(d.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("series %s: bad value %q: %w", seriesID, d.Value, err)
		}
		observations = append(observations, models.Observation{Date: date, Value: value})
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("series %s: no usable periods in response", seriesID)
	}

	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
	if len(observations) > limit {
		observations = observations[len(observations)-limit:]
	}

	c.logger.Debug().Str("series_id", seriesID).Int("count", len(observations)).Msg("Fetched BLS series")
	return observations, nil
}

// periodToDate maps a BLS (year, period) pair to the first day of the period.
// The second return is false for aggregate periods (M13 annual average).
func periodToDate(yearStr, period string) (time.Time, bool, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad year %q", yearStr)
	}
	if len(period) != 3 {
		return time.Time{}, false, fmt.Errorf("bad period %q", period)
	}
	n, err := strconv.Atoi(period[1:])
	if err != nil {
		return time.Time{}, false, fmt.Errorf("bad period %q", period)
	}
	var month int
	switch period[0] {
	case 'M':
		if n == 13 {
			return time.Time{}, false, nil
		}
		if n < 1 || n > 12 {
			return time.Time{}, false, fmt.Errorf("bad monthly period %q", period)
		}
		month = n
	case 'Q':
		if n == 5 {
			return time.Time{}, false, nil
		}
		if n < 1 || n > 4 {
			return time.Time{}, false, fmt.Errorf("bad quarterly period %q", period)
		}
		month = (n-1)*3 + 1
	case 'A':
		month = 1
	default:
		return time.Time{}, false, fmt.Errorf("bad period %q", period)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true, nil
}
