package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/logging"
)

// errFetchInterrupted is returned when the spinner exits before the pass finished.
var errFetchInterrupted = errors.New("fetch interrupted")

type fetchResult struct {
	ds  canvas.Dataset
	err error
}

// fetchOnce runs one aggregation pass, behind a spinner when stdout is a terminal.
func fetchOnce(ctx context.Context, a *app, title string) (canvas.Dataset, error) {
	if !logging.IsTerminal(os.Stdout) {
		return a.agg.FetchAllCourses(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan fetchResult, 1)
	runErr := spinner.New().
		Context(ctx).
		Title(title).
		Action(func() {
			ds, err := a.agg.FetchAllCourses(ctx)
			done <- fetchResult{ds: ds, err: err}
		}).
		Run()

	return awaitFetch(done, runErr)
}

// awaitFetch returns the pass result if it is already there. Anything else
// means the spinner was interrupted; the pass is abandoned and its late result
// lands in the buffered channel unread.
func awaitFetch(done <-chan fetchResult, runErr error) (canvas.Dataset, error) {
	select {
	case r := <-done:
		return r.ds, r.err
	default:
	}
	if runErr != nil {
		return nil, fmt.Errorf("%w: %w", errFetchInterrupted, runErr)
	}
	return nil, errFetchInterrupted
}
