package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrNoState is returned when nothing has been observed for a credential.
var ErrNoState = errors.New("no rate limit state")

// Prometheus metrics for rate limit tracking.
var (
	canvasRateLimitRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "canvas_rate_limit_remaining",
		Help: "Last observed Canvas rate limit quota by credential fingerprint",
	}, []string{"credential"})

	canvasRequestCost = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canvas_request_cost",
		Help:    "Cost Canvas charged per request (X-Request-Cost)",
		Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50},
	})

	canvasRateLimitLowTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canvas_rate_limit_low_total",
		Help: "Total number of responses observed with quota below the low threshold",
	})
)

// Tracker records Canvas throttling headers per credential.
// Redis is optional; without it state lives only in this process.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	local map[string]RateLimitState
}

// NewTracker creates a new rate limit tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
		local:  make(map[string]RateLimitState),
	}
}

// UpdateFromHeaders parses Canvas throttling headers observed for credential and
// stores the resulting state. Responses without X-Rate-Limit-Remaining are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, credential string, headers http.Header) error {
	remainStr := strings.TrimSpace(headers.Get(HeaderRemaining))
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.ParseFloat(remainStr, 64)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	var cost float64
	if costStr := strings.TrimSpace(headers.Get(HeaderRequestCost)); costStr != "" {
		cost, err = strconv.ParseFloat(costStr, 64)
		if err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderRequestCost, err)
		}
		canvasRequestCost.Observe(cost)
	}

	state := RateLimitState{
		Credential: credential,
		Remaining:  remain,
		LastCost:   cost,
		LastUpdate: time.Now(),
	}
	state.UpdateHealth()

	t.mu.Lock()
	t.local[credential] = state
	t.mu.Unlock()

	canvasRateLimitRemaining.WithLabelValues(credential).Set(remain)

	if t.redis != nil {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal rate limit state: %w", err)
		}

		pipe := t.redis.Pipeline()
		pipe.Set(ctx, RedisKey(credential), data, 0)
		pipe.SAdd(ctx, RedisKeyCredentials, credential)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("store rate limit state in redis: %w", err)
		}
	}

	if state.IsLow {
		canvasRateLimitLowTotal.Inc()
		t.logger.Warn().
			Str("credential", credential).
			Float64("remaining", remain).
			Float64("cost", cost).
			Msg("Canvas quota low for credential")
	} else {
		t.logger.Debug().
			Str("credential", credential).
			Float64("remaining", remain).
			Float64("cost", cost).
			Msg("Canvas quota updated")
	}

	return nil
}

// GetState returns the last known state of credential.
// Redis is consulted first when configured, so state written by other
// processes sharing the same tokens is visible.
func (t *Tracker) GetState(ctx context.Context, credential string) (*RateLimitState, error) {
	if t.redis != nil {
		data, err := t.redis.Get(ctx, RedisKey(credential)).Bytes()
		switch {
		case err == nil:
			var state RateLimitState
			if err := json.Unmarshal(data, &state); err != nil {
				return nil, fmt.Errorf("parse rate limit state: %w", err)
			}
			return &state, nil
		case err != redis.Nil:
			return nil, fmt.Errorf("get rate limit state: %w", err)
		}
	}

	t.mu.RLock()
	state, ok := t.local[credential]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for credential %s", ErrNoState, credential)
	}
	return &state, nil
}

// States returns every known state sorted by credential fingerprint.
func (t *Tracker) States(ctx context.Context) ([]RateLimitState, error) {
	seen := make(map[string]bool)

	t.mu.RLock()
	for fp := range t.local {
		seen[fp] = true
	}
	t.mu.RUnlock()

	if t.redis != nil {
		members, err := t.redis.SMembers(ctx, RedisKeyCredentials).Result()
		if err != nil {
			return nil, fmt.Errorf("list rate limit credentials: %w", err)
		}
		for _, fp := range members {
			seen[fp] = true
		}
	}

	fps := make([]string, 0, len(seen))
	for fp := range seen {
		fps = append(fps, fp)
	}
	sort.Strings(fps)

	states := make([]RateLimitState, 0, len(fps))
	for _, fp := range fps {
		state, err := t.GetState(ctx, fp)
		if err != nil {
			if errors.Is(err, ErrNoState) {
				continue
			}
			return nil, err
		}
		states = append(states, *state)
	}
	return states, nil
}
