package pagination

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/audittools/gh-audit-export/pkg/logging"
)

// Prometheus metrics for pagination.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghaudit_pages_fetched_total",
		Help: "Total number of pages fetched",
	})

	recordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ghaudit_records_fetched_total",
		Help: "Total number of audit-log records fetched",
	})
)

// PagesFetchedTotal returns the pages counter (for tests).
func PagesFetchedTotal() prometheus.Counter {
	return pagesFetchedTotal
}

// RecordsFetchedTotal returns the records counter (for tests).
func RecordsFetchedTotal() prometheus.Counter {
	return recordsFetchedTotal
}

// Getter is the single-request interface the fetcher needs. It is
// implemented by client.Client.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Fetcher follows pagination links until exhaustion, one request at a time.
type Fetcher struct {
	client Getter
	logger zerolog.Logger
}

// NewFetcher creates a fetcher on top of an API client.
func NewFetcher(client Getter) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logging.NewLogger("fetcher"),
	}
}

// FetchAll retrieves every page starting at url and returns the records of
// all pages concatenated in order. The loop issues exactly one request per
// page and stops at the first response without a rel="next" link.
//
// Any request failure, non-2xx status, or malformed body aborts the whole
// fetch; there is no retry and no partial result.
func (f *Fetcher) FetchAll(ctx context.Context, url string) (ResultSet, error) {
	start := time.Now()
	results := ResultSet{}
	current := url
	pages := 0

	for current != "" {
		resp, err := f.client.Get(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pages+1, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", pages+1, err)
		}

		records, err := parsePage(current, body)
		if err != nil {
			return nil, err
		}
		results = append(results, records...)

		pages++
		pagesFetchedTotal.Inc()
		recordsFetchedTotal.Add(float64(len(records)))

		next := nextPageURL(resp)
		f.logger.Debug().
			Str("url", current).
			Int("records", len(records)).
			Bool("has_next", next != "").
			Msg("Page fetched")

		current = next
	}

	f.logger.Info().
		Int("pages", pages).
		Int("records", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}
