package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	// ErrTooManyPages is returned when a resource keeps linking past Config.MaxPages.
	ErrTooManyPages = errors.New("pagination exceeded page limit")

	// ErrNotArray is returned when a page body is not a JSON array.
	ErrNotArray = errors.New("page body is not a JSON array")
)

var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_pages_fetched_total",
		Help: "Total number of Canvas list pages fetched successfully",
	}, []string{"endpoint"})

	paginatedFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_paginated_fetches_total",
		Help: "Total paginated fetch calls by result",
	}, []string{"result"})
)

// Config holds fetcher configuration
type Config struct {
	// MaxPages bounds the number of pages followed for one resource.
	MaxPages int
}

// DefaultConfig returns the default fetcher configuration
func DefaultConfig() Config {
	return Config{
		MaxPages: 1000,
	}
}

// Getter is the single-request interface the Canvas client implements.
type Getter interface {
	Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error)
}

// Fetcher follows Link pagination sequentially.
type Fetcher struct {
	client Getter
	config Config
}

// NewFetcher creates a new fetcher
func NewFetcher(c Getter, config Config) *Fetcher {
	if config.MaxPages <= 0 {
		config.MaxPages = 1000
	}

	return &Fetcher{
		client: c,
		config: config,
	}
}

// FetchAll fetches every page of the list resource at baseURL and returns the
// concatenated array elements. params apply to the first request only.
// Any non-200 page fails the whole call with a *client.APIError in the chain.
func (f *Fetcher) FetchAll(ctx context.Context, baseURL string, params url.Values) ([]json.RawMessage, error) {
	start := time.Now()

	all := []json.RawMessage{}
	next := baseURL
	query := params
	page := 0
	endpoint := endpointOf(baseURL)

	for next != "" {
		page++
		if page > f.config.MaxPages {
			paginatedFetchesTotal.WithLabelValues("failure").Inc()
			return nil, fmt.Errorf("%w (%d) for %s", ErrTooManyPages, f.config.MaxPages, baseURL)
		}

		items, link, err := f.fetchPage(ctx, next, query)
		if err != nil {
			paginatedFetchesTotal.WithLabelValues("failure").Inc()
			log.Warn().
				Err(err).
				Str("url", baseURL).
				Int("page", page).
				Int("discarded_items", len(all)).
				Msg("Paginated fetch failed")
			return nil, fmt.Errorf("fetch page %d of %s: %w", page, baseURL, err)
		}

		all = append(all, items...)
		pagesFetchedTotal.WithLabelValues(endpoint).Inc()

		log.Debug().
			Str("url", next).
			Int("page", page).
			Int("items", len(items)).
			Bool("has_next", link != "").
			Msg("Fetched page")

		next = link
		query = nil
	}

	paginatedFetchesTotal.WithLabelValues("success").Inc()
	log.Info().
		Str("url", baseURL).
		Int("pages", page).
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return all, nil
}

// fetchPage fetches a single page and returns its items and the next page URL.
func (f *Fetcher) fetchPage(ctx context.Context, pageURL string, params url.Values) ([]json.RawMessage, string, error) {
	resp, err := f.client.Get(ctx, pageURL, params)
	if err != nil {
		return nil, "", err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", client.NewStatusError(resp)
	}
	defer resp.Body.Close()

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, "", fmt.Errorf("decode page: %w", err)
	}
	// null decodes without error and leaves items nil.
	if items == nil {
		return nil, "", ErrNotArray
	}

	return items, NextLink(resp.Header), nil
}

// FetchInto fetches every page and decodes each element into T.
func FetchInto[T any](ctx context.Context, f *Fetcher, baseURL string, params url.Values) ([]T, error) {
	raw, err := f.FetchAll(ctx, baseURL, params)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("decode item %d of %s: %w", i, baseURL, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return client.EndpointLabel(u.Path)
}
