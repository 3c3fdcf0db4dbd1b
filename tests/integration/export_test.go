package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/audittools/gh-audit-export/pkg/client"
	"github.com/audittools/gh-audit-export/pkg/export"
	"github.com/audittools/gh-audit-export/pkg/pagination"

	mockapi "github.com/audittools/gh-audit-export/internal/testutil"
)

func newClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("ghp_integration_token")
	cfg.BaseURL = baseURL
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return c
}

// TestFullExportFlow covers the complete flow: credential → paginated
// fetch → CSV and JSON output.
func TestFullExportFlow(t *testing.T) {
	mock := mockapi.NewMockAPI()
	defer mock.Close()

	mock.SetPaginated("/enterprises/acme/audit-log", []string{
		`[{"action":"git.clone","actor":"alice","repo":"acme/api"},{"action":"git.clone","actor":"bob","repo":"acme/web"}]`,
		`[{"action":"repo.create","actor":"carol","repo":"acme/new"}]`,
	})

	apiClient := newClient(t, mock.URL())
	fetcher := pagination.NewFetcher(apiClient)

	results, err := fetcher.FetchAll(context.Background(), "/enterprises/acme/audit-log?per_page=100")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("Request count = %d, want 2", mock.GetRequestCount())
	}

	// Bearer credential must be presented on every request
	if got := mock.LastRequestHeader.Get("Authorization"); got != "Bearer ghp_integration_token" {
		t.Errorf("Authorization = %q", got)
	}

	dir := t.TempDir()

	// CSV output
	csvPath := filepath.Join(dir, "audit.csv")
	if err := export.Write(results, export.Options{Format: export.FormatCSV, Path: csvPath}); err != nil {
		t.Fatalf("Write(csv) error = %v", err)
	}
	csvData, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("Reading CSV: %v", err)
	}
	wantCSV := "action,actor,repo\ngit.clone,alice,acme/api\ngit.clone,bob,acme/web\nrepo.create,carol,acme/new\n"
	if string(csvData) != wantCSV {
		t.Errorf("CSV = %q, want %q", csvData, wantCSV)
	}

	// JSON output round-trips to equal records
	jsonPath := filepath.Join(dir, "audit.json")
	if err := export.Write(results, export.Options{Format: export.FormatJSON, Path: jsonPath}); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Reading JSON: %v", err)
	}

	var back pagination.ResultSet
	if err := json.Unmarshal(jsonData, &back); err != nil {
		t.Fatalf("Parsing written JSON: %v", err)
	}
	if len(back) != len(results) {
		t.Fatalf("Round trip lost records: %d != %d", len(back), len(results))
	}
	for i := range back {
		for _, key := range results[i].Keys() {
			want, _ := results[i].Get(key)
			got, ok := back[i].Get(key)
			if !ok || got != want {
				t.Errorf("record %d key %q = %v, want %v", i, key, got, want)
			}
		}
	}
}

// TestMetricsExercised checks that fetching bumps the pagination counters.
func TestMetricsExercised(t *testing.T) {
	mock := mockapi.NewMockAPI()
	defer mock.Close()

	mock.SetPaginated("/enterprises/acme/audit-log", []string{
		`[{"action":"a"}]`,
		`[{"action":"b"}]`,
		`[{"action":"c"}]`,
	})

	pagesBefore := testutil.ToFloat64(pagination.PagesFetchedTotal())
	recordsBefore := testutil.ToFloat64(pagination.RecordsFetchedTotal())

	apiClient := newClient(t, mock.URL())
	fetcher := pagination.NewFetcher(apiClient)

	results, err := fetcher.FetchAll(context.Background(), "/enterprises/acme/audit-log")
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if got := testutil.ToFloat64(pagination.PagesFetchedTotal()) - pagesBefore; got != 3 {
		t.Errorf("pages_fetched_total delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(pagination.RecordsFetchedTotal()) - recordsBefore; got != 3 {
		t.Errorf("records_fetched_total delta = %v, want 3", got)
	}
}

// TestRateLimitObservation checks that rate limit headers from the API
// surface in the client's snapshot.
func TestRateLimitObservation(t *testing.T) {
	mock := mockapi.NewMockAPI()
	defer mock.Close()

	mock.SetPaginated("/enterprises/acme/audit-log", []string{`[]`})

	apiClient := newClient(t, mock.URL())
	fetcher := pagination.NewFetcher(apiClient)

	if _, err := fetcher.FetchAll(context.Background(), "/enterprises/acme/audit-log"); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	state := apiClient.RateLimit()
	if state.Remaining != 4999 {
		t.Errorf("RateLimit().Remaining = %d, want 4999", state.Remaining)
	}
	if state.Limit != 5000 {
		t.Errorf("RateLimit().Limit = %d, want 5000", state.Limit)
	}
}
