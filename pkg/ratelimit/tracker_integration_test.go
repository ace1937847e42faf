//go:build integration

package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestTracker_Integration_GetState(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	tracker := NewTracker(redisClient, logger)
	ctx := context.Background()

	// Nothing observed yet
	if _, err := tracker.GetState(ctx, "fp-a"); !errors.Is(err, ErrNoState) {
		t.Fatalf("GetState() error = %v, want ErrNoState", err)
	}

	headers := http.Header{}
	headers.Set(HeaderRemaining, "612.5")
	headers.Set(HeaderRequestCost, "2.0")

	if err := tracker.UpdateFromHeaders(ctx, "fp-a", headers); err != nil {
		t.Fatalf("UpdateFromHeaders() error = %v", err)
	}

	// A second tracker sharing Redis sees the state written by the first.
	other := NewTracker(redisClient, logger)
	state, err := other.GetState(ctx, "fp-a")
	if err != nil {
		t.Fatalf("GetState() from shared redis error = %v", err)
	}

	if state.Remaining != 612.5 {
		t.Errorf("Remaining = %v, want 612.5", state.Remaining)
	}
	if state.LastCost != 2.0 {
		t.Errorf("LastCost = %v, want 2.0", state.LastCost)
	}
	if state.IsLow {
		t.Error("State with 612.5 remaining should not be low")
	}
}

func TestTracker_Integration_States(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	writer := NewTracker(redisClient, logger)
	ctx := context.Background()

	tests := []struct {
		credential string
		remain     string
		wantLow    bool
	}{
		{credential: "fp-b", remain: "700", wantLow: false},
		{credential: "fp-a", remain: "12", wantLow: true},
	}

	for _, tt := range tests {
		headers := http.Header{}
		headers.Set(HeaderRemaining, tt.remain)
		if err := writer.UpdateFromHeaders(ctx, tt.credential, headers); err != nil {
			t.Fatalf("UpdateFromHeaders(%s) error = %v", tt.credential, err)
		}
	}

	reader := NewTracker(redisClient, logger)
	states, err := reader.States(ctx)
	if err != nil {
		t.Fatalf("States() error = %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("len(States()) = %d, want 2", len(states))
	}
	if states[0].Credential != "fp-a" || !states[0].IsLow {
		t.Errorf("states[0] = %+v, want low fp-a", states[0])
	}
	if states[1].Credential != "fp-b" || states[1].IsLow {
		t.Errorf("states[1] = %+v, want healthy fp-b", states[1])
	}
}
