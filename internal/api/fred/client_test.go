package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("series_id"); got != "UNRATE" {
			t.Errorf("series_id = %q, want UNRATE", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"observations": [
				{"date": "2025-07-01", "value": "4.2"},
				{"date": "2025-06-01", "value": "4.1"},
				{"date": "2025-05-01", "value": "."},
				{"date": "2025-04-01", "value": "4.2"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "test-key", BaseURL: srv.URL})
	obs, err := c.FetchSeries(context.Background(), "UNRATE", 4)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}

	// The "." placeholder is skipped, the rest come back oldest first.
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}
	if obs[0].Value != 4.2 || obs[0].Date.Month() != 4 {
		t.Errorf("first observation = %+v, want April 4.2", obs[0])
	}
	if obs[2].Value != 4.2 || obs[2].Date.Month() != 7 {
		t.Errorf("last observation = %+v, want July 4.2", obs[2])
	}
}

func TestFetchSeriesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_code": 400, "error_message": "Bad Request. Variable api_key is not registered."}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "bogus", BaseURL: srv.URL})
	if _, err := c.FetchSeries(context.Background(), "UNRATE", 4); err == nil {
		t.Error("expected error from API error payload")
	}
}

func TestFetchSeriesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"observations": []}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "test-key", BaseURL: srv.URL})
	if _, err := c.FetchSeries(context.Background(), "UNRATE", 4); err == nil {
		t.Error("expected error for empty series")
	}
}
