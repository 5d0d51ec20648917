package bea

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("TableName"); got != "T10106" {
			t.Errorf("TableName = %q, want T10106", got)
		}
		if got := q.Get("DataSetName"); got != "NIPA" {
			t.Errorf("DataSetName = %q, want NIPA", got)
		}
		_, _ = w.Write([]byte(`{"BEAAPI": {"Results": {"Data": [
			{"SeriesCode": "A019RC", "TimePeriod": "2025Q1", "DataValue": "-1,033.7"},
			{"SeriesCode": "A019RC", "TimePeriod": "2024Q4", "DataValue": "-1,021.4"},
			{"SeriesCode": "A191RL", "TimePeriod": "2025Q1", "DataValue": "2.4"}
		]}}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "test-key", BaseURL: srv.URL})
	obs, err := c.FetchSeries(context.Background(), "T10106:A019RC", 8)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}

	// Rows for other series codes are filtered out; values come back oldest
	// first with separators stripped.
	if len(obs) != 2 {
		t.Fatalf("got %d observations, want 2", len(obs))
	}
	if obs[0].Value != -1021.4 || !obs[0].Date.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first observation = %+v, want 2024Q4 -1021.4", obs[0])
	}
	if obs[1].Value != -1033.7 {
		t.Errorf("last observation value = %v, want -1033.7", obs[1].Value)
	}
}

func TestFetchSeriesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"BEAAPI": {"Results": {"Error": {"APIErrorCode": "3", "APIErrorDescription": "The BEA API UserID provided is not registered."}}}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "bogus", BaseURL: srv.URL})
	if _, err := c.FetchSeries(context.Background(), "T10106:A019RC", 8); err == nil {
		t.Error("expected error from API error payload")
	}
}

func TestFetchSeriesBadReference(t *testing.T) {
	c := NewClient(ClientOptions{APIKey: "test-key"})
	if _, err := c.FetchSeries(context.Background(), "T10106", 8); err == nil {
		t.Error("expected error for reference without series code")
	}
}

func TestParseTimePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024Q3", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024M07", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024Q5", time.Time{}, true},
		{"24Q1", time.Time{}, true},
		{"2024X1", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimePeriod(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimePeriod: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimePeriod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
