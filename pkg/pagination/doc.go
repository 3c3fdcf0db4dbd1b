// Package pagination implements sequential fetching of paginated GitHub API
// endpoints.
//
// GitHub exposes pagination through the Link response header; each page
// carries a rel="next" entry until the final page, which has none. The
// fetcher follows those links one request at a time and accumulates every
// record in the order received.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(apiClient)
//	results, err := fetcher.FetchAll(ctx, "/enterprises/acme/audit-log?per_page=100")
//
// The fetcher:
//   - Issues exactly one request per page, strictly in sequence
//   - Terminates on the first response without a rel="next" link
//   - Aborts fatally on any non-2xx response or malformed body
//   - Preserves record order: first-page-first, within-page order intact
//
// Link extraction is isolated in nextPageURL so the loop stays independent
// of the exact header shape.
package pagination
