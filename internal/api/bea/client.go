// Package bea implements a client for the BEA data API (GetData method).
// A series reference has the form "TableName:SeriesCode", e.g.
// "T10106:A019RC" for net exports in the NIPA real-GDP table.
package bea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/macrolabs/laborcast/internal/platform/http"
	"github.com/macrolabs/laborcast/models"
)

// Client is the BEA API client.
type Client struct {
	apiKey     string
	baseURL    string
	dataset    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new BEA client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	Dataset         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new BEA API client.
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://apps.bea.gov"
	}
	dataset := options.Dataset
	if dataset == "" {
		dataset = "NIPA"
	}
	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		dataset: dataset,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "bea_client").Logger(),
	}
}

type dataResponse struct {
	BEAAPI struct {
		Results struct {
			Data []struct {
				SeriesCode string `json:"SeriesCode"`
				TimePeriod string `json:"TimePeriod"`
				DataValue  string `json:"DataValue"`
			} `json:"Data"`
			Error *struct {
				Code        string `json:"APIErrorCode"`
				Description string `json:"APIErrorDescription"`
			} `json:"Error"`
		} `json:"Results"`
	} `json:"BEAAPI"`
}

// FetchSeries fetches the latest observations of one "table:code" series,
// oldest first. BEA formats values with thousands separators; those are
// stripped before parsing.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, limit int) ([]models.Observation, error) {
	tableName, seriesCode, ok := strings.Cut(seriesID, ":")
	if !ok {
		return nil, fmt.Errorf("bad BEA series reference %q, want table:code", seriesID)
	}

	params := url.Values{}
	params.Set("UserID", c.apiKey)
	params.Set("method", "GetData")
	params.Set("DataSetName", c.dataset)
	params.Set("TableName", tableName)
	params.Set("Frequency", "Q")
	params.Set("Year", "X")
	params.Set("ResultFormat", "JSON")

	reqURL := fmt.Sprintf("%s/api/data?%s", c.baseURL, params.Encode())

	c.logger.Debug().Str("table", tableName).Str("series_code", seriesCode).Msg("Fetching BEA series")

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

	var data dataResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing BEA JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if apiErr := data.BEAAPI.Results.Error; apiErr != nil {
		return nil, fmt.Errorf("BEA API error %s: %s", apiErr.Code, apiErr.Description)
	}

	var observations []models.Observation
	for _, d := range data.BEAAPI.Results.Data {
		if d.SeriesCode != seriesCode {
			continue
		}
		date, err := parseTimePeriod(d.TimePeriod)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", seriesID, err)
		}
		raw := strings.ReplaceAll(d.DataValue, ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("series %s: bad value %q: %w", seriesID, d.DataValue, err)
		}
		observations = append(observations, models.Observation{Date: date, Value: value})
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("series %s: no rows for series code %s", seriesID, seriesCode)
	}

	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
	if len(observations) > limit {
		observations = observations[len(observations)-limit:]
	}

	c.logger.Debug().Str("series_code", seriesCode).Int("count", len(observations)).Msg("Fetched BEA series")
	return observations, nil
}

// parseTimePeriod maps BEA time periods ("2024", "2024Q3", "2024M07") to the
// first day of the period.
func parseTimePeriod(s string) (time.Time, error) {
	if len(s) < 4 {
		return time.Time{}, fmt.Errorf("bad time period %q", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time period %q", s)
	}
	month := 1
	if len(s) > 4 {
		n, err := strconv.Atoi(s[5:])
		if err != nil {
			return time.Time{}, fmt.Errorf("bad time period %q", s)
		}
		switch s[4] {
		case 'Q':
			if n < 1 || n > 4 {
				return time.Time{}, fmt.Errorf("bad quarter in %q", s)
			}
			month = (n-1)*3 + 1
		case 'M':
			if n < 1 || n > 12 {
				return time.Time{}, fmt.Errorf("bad month in %q", s)
			}
			month = n
		default:
			return time.Time{}, fmt.Errorf("bad time period %q", s)
		}
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}
