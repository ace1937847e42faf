package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func newTestTracker() *Tracker {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return NewTracker(nil, logger)
}

func TestUpdateFromHeaders_ValidHeaders(t *testing.T) {
	tests := []struct {
		name          string
		remainHeader  string
		costHeader    string
		wantRemaining float64
		wantCost      float64
		wantLow       bool
	}{
		{
			name:          "healthy bucket",
			remainHeader:  "700.0",
			costHeader:    "1.5",
			wantRemaining: 700,
			wantCost:      1.5,
			wantLow:       false,
		},
		{
			name:          "low bucket",
			remainHeader:  "42.25",
			costHeader:    "3",
			wantRemaining: 42.25,
			wantCost:      3,
			wantLow:       true,
		},
		{
			name:          "cost header missing",
			remainHeader:  "500",
			wantRemaining: 500,
			wantCost:      0,
			wantLow:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()

			headers := http.Header{}
			headers.Set(HeaderRemaining, tt.remainHeader)
			if tt.costHeader != "" {
				headers.Set(HeaderRequestCost, tt.costHeader)
			}

			if err := tracker.UpdateFromHeaders(context.Background(), "fp1", headers); err != nil {
				t.Fatalf("UpdateFromHeaders() error = %v", err)
			}

			state, err := tracker.GetState(context.Background(), "fp1")
			if err != nil {
				t.Fatalf("GetState() error = %v", err)
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", state.Remaining, tt.wantRemaining)
			}
			if state.LastCost != tt.wantCost {
				t.Errorf("LastCost = %v, want %v", state.LastCost, tt.wantCost)
			}
			if state.IsLow != tt.wantLow {
				t.Errorf("IsLow = %v, want %v", state.IsLow, tt.wantLow)
			}
			if state.Credential != "fp1" {
				t.Errorf("Credential = %q, want fp1", state.Credential)
			}
		})
	}
}

func TestUpdateFromHeaders_InvalidHeaders(t *testing.T) {
	tests := []struct {
		name         string
		remainHeader string
		costHeader   string
		shouldError  bool
	}{
		{name: "missing remain header", remainHeader: "", costHeader: "1", shouldError: false},
		{name: "invalid remain header", remainHeader: "lots", shouldError: true},
		{name: "invalid cost header", remainHeader: "100", costHeader: "cheap", shouldError: true},
		{name: "both headers missing", shouldError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()

			headers := http.Header{}
			if tt.remainHeader != "" {
				headers.Set(HeaderRemaining, tt.remainHeader)
			}
			if tt.costHeader != "" {
				headers.Set(HeaderRequestCost, tt.costHeader)
			}

			err := tracker.UpdateFromHeaders(context.Background(), "fp", headers)

			if tt.shouldError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestGetState_Unknown(t *testing.T) {
	tracker := newTestTracker()

	_, err := tracker.GetState(context.Background(), "nobody")
	if !errors.Is(err, ErrNoState) {
		t.Errorf("GetState() error = %v, want ErrNoState", err)
	}
}

func TestStates_SortedByCredential(t *testing.T) {
	tracker := newTestTracker()
	ctx := context.Background()

	for _, fp := range []string{"ccc", "aaa", "bbb"} {
		headers := http.Header{}
		headers.Set(HeaderRemaining, "650")
		if err := tracker.UpdateFromHeaders(ctx, fp, headers); err != nil {
			t.Fatalf("UpdateFromHeaders(%s) error = %v", fp, err)
		}
	}

	states, err := tracker.States(ctx)
	if err != nil {
		t.Fatalf("States() error = %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("len(States()) = %d, want 3", len(states))
	}
	for i, want := range []string{"aaa", "bbb", "ccc"} {
		if states[i].Credential != want {
			t.Errorf("states[%d].Credential = %q, want %q", i, states[i].Credential, want)
		}
	}
}
