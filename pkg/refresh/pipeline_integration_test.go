//go:build integration

package refresh_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/canvaspal/internal/testutil"
	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/client"
	"github.com/Sternrassler/canvaspal/pkg/pagination"
	"github.com/Sternrassler/canvaspal/pkg/ratelimit"
	"github.com/Sternrassler/canvaspal/pkg/refresh"
	"github.com/Sternrassler/canvaspal/pkg/tokens"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// testTransport sends requests for the public Canvas host to the mock server.
type testTransport struct {
	mockServer *testutil.MockCanvas
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host == "canvas.instructure.com" {
		req.URL.Scheme = "http"
		req.URL.Host = strings.TrimPrefix(t.mockServer.URL(), "http://")
	}
	return http.DefaultTransport.RoundTrip(req)
}

// TestFullPipeline runs startup and manual passes through the whole stack:
// scheduler, aggregator, paginated fetcher, rotating client and Redis-backed quota.
func TestFullPipeline(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCanvas()
	defer mock.Close()

	due := "2024-03-15T23:59:00Z"
	mock.SetPages("/api/v1/users/self/courses",
		testutil.JSONPage([]any{
			testutil.Course(1, "Biology", "available", "Spring 2024"),
			testutil.Course(2, "Old History", "completed", "Fall 2022"),
		}),
		testutil.JSONPage([]any{testutil.Course(3, "Chemistry", "available", "Spring 2024")}),
	)
	mock.SetJSON("/api/v1/courses/1/assignments", []any{testutil.Assignment(10, "Lab Report", &due)})
	mock.SetJSON("/api/v1/courses/1/modules", []any{testutil.Module(20, "Week 1", 5)})
	mock.SetStatus("/api/v1/courses/3/assignments", http.StatusForbidden)
	mock.SetJSON("/api/v1/courses/3/modules", []any{})

	pool, err := tokens.NewPool([]string{"tok-a", "tok-b", "tok-c"})
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	tracker := ratelimit.NewTracker(redisClient, zerolog.Nop())

	c, err := client.New(client.Config{
		BaseURL:   "https://canvas.instructure.com",
		UserAgent: "canvaspal-integration/1.0",
		Pool:      pool,
		Tracker:   tracker,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	c.SetHTTPClient(&http.Client{
		Transport: &testTransport{mockServer: mock},
		Timeout:   30 * time.Second,
	})

	agg := canvas.NewAggregator(pagination.NewFetcher(c, pagination.DefaultConfig()), c.APIBase(), zerolog.Nop())

	var mu sync.Mutex
	var delivered []canvas.Dataset
	sched := refresh.New(agg, func(ds canvas.Dataset) {
		mu.Lock()
		delivered = append(delivered, ds)
		mu.Unlock()
	}, refresh.DefaultConfig(), zerolog.Nop())

	deliveries := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	waitUntil(t, func() bool { return deliveries() == 1 && sched.State() == refresh.Idle })

	mu.Lock()
	ds := delivered[0]
	mu.Unlock()

	if len(ds) != 2 {
		t.Fatalf("Expected 2 available courses, got %d", len(ds))
	}
	if ds[0].Name != "Biology" || ds[1].Name != "Chemistry" {
		t.Errorf("Unexpected course order: %q, %q", ds[0].Name, ds[1].Name)
	}
	if got := ds[0].AssignmentsText(); got != "- Lab Report (Due: March 15, 2024 at 11:59 PM)" {
		t.Errorf("Biology assignments = %q", got)
	}
	if got := ds[1].AssignmentsText(); got != "No Assignments" {
		t.Errorf("Chemistry assignments = %q, want empty after 403", got)
	}

	// 2 course-list pages + 2 detail requests for each of 2 courses.
	if n := mock.GetRequestCount(); n != 6 {
		t.Errorf("Canvas requests = %d, want 6", n)
	}

	// Every credential was used and its quota landed in Redis.
	for _, fp := range pool.Fingerprints() {
		state, err := tracker.GetState(ctx, fp)
		if err != nil {
			t.Fatalf("GetState(%s) error = %v", fp, err)
		}
		if state.Remaining != 700 {
			t.Errorf("Remaining for %s = %v, want 700", fp, state.Remaining)
		}
		if exists, _ := redisClient.Exists(ctx, ratelimit.RedisKey(fp)).Result(); exists != 1 {
			t.Errorf("Expected Redis key for %s", fp)
		}
	}

	// A failing manual pass keeps the delivered dataset.
	mock.SetStatus("/api/v1/users/self/courses", http.StatusInternalServerError)
	mock.Reset()

	sched.Trigger()
	waitUntil(t, func() bool { return mock.GetRequestCount() == 1 && sched.State() == refresh.Idle })

	if n := deliveries(); n != 1 {
		t.Errorf("Deliveries after failed pass = %d, want 1", n)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
