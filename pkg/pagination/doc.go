// Package pagination provides sequential fetching of paginated Canvas endpoints.
//
// Canvas paginates list endpoints with RFC 5988 Link headers. Each response
// carries the full URL of the next page under rel="next"; the last page has none.
// This package follows those links one page at a time and aggregates the JSON
// arrays of every page.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(canvasClient, pagination.DefaultConfig())
//	items, err := fetcher.FetchAll(ctx, canvasClient.URL("users/self/courses"),
//		url.Values{"per_page": {"100"}})
//
// The fetcher:
//   - Applies query parameters to the first request only; next-page URLs are used verbatim
//   - Issues one client call per page (so a rotating client uses a new credential per page)
//   - Fails the whole call on the first non-200 page, discarding pages already read
//   - Never retries a page
//   - Stops after MaxPages to bound a server that keeps linking to itself
package pagination
