package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/dashboard"
	"github.com/Sternrassler/canvaspal/pkg/logging"
	"github.com/Sternrassler/canvaspal/pkg/refresh"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the course table on screen and refresh it periodically",
	Long: `Fetch courses on startup and then every refresh interval. Lines typed on stdin
filter the table by course name; ":<n>" shows details of row n, ":r" refreshes
now and ":q" quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsAddr := cfg.MetricsAddr
		if cmd.Flags().Changed("metrics-addr") {
			metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		compact, _ := cmd.Flags().GetBool("compact")

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		view := dashboard.NewView(cfg.RefreshInterval)
		view.Compact = compact

		w := &watcher{
			out:   cmd.OutOrStdout(),
			view:  view,
			clear: logging.IsTerminal(os.Stdout),
		}

		var loaded atomic.Bool
		sched := refresh.New(a.agg, func(ds canvas.Dataset) {
			loaded.Store(true)
			w.view.SetDataset(ds)
			w.render()
		}, refresh.Config{Interval: cfg.RefreshInterval}, logging.NewLogger("refresh"))

		if metricsAddr != "" {
			srv := newMetricsServer(metricsAddr, a.redis, loaded.Load)
			go func() {
				a.logger.Info().Str("addr", metricsAddr).Msg("Serving metrics")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.logger.Error().Err(err).Msg("Metrics server failed")
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()
		}

		// Run has not started yet, so this goroutine still owns the view.
		w.render()

		go w.readInput(ctx, cmd.InOrStdin(), sched, stop)

		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// watcher owns the terminal output of watch mode. Its methods run on the
// scheduler loop goroutine.
type watcher struct {
	out   io.Writer
	view  *dashboard.View
	clear bool
}

func (w *watcher) render() {
	if w.clear {
		fmt.Fprint(w.out, "\033[H\033[2J")
	}
	if err := w.view.Render(w.out); err != nil {
		return
	}
	fmt.Fprintln(w.out, "Type to search, :h for help")
}

func (w *watcher) showDetail(row int) {
	detail, err := w.view.Select(row)
	if err != nil {
		fmt.Fprintln(w.out, err)
		return
	}
	fmt.Fprintf(w.out, "\n%s\n\n", detail)
}

// readInput forwards stdin lines to the loop goroutine until ctx is done, the
// user quits or stdin is closed.
func (w *watcher) readInput(ctx context.Context, r io.Reader, sched *refresh.Scheduler, quit context.CancelFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		in := parseInput(scanner.Text())
		switch in.kind {
		case inputQuit:
			quit()
			return
		case inputRefresh:
			sched.Trigger()
		case inputSelect:
			sched.Post(func() { w.showDetail(in.row) })
		case inputHelp:
			sched.Post(func() { fmt.Fprintln(w.out, watchHelp) })
		default:
			sched.Post(func() {
				w.view.SetQuery(in.query)
				w.render()
			})
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("metrics-addr", "", "Serve /metrics, /health and /ready on this address (e.g. :9090)")
	watchCmd.Flags().BoolP("compact", "c", true, "Show assignment and module counts instead of lists")
}
