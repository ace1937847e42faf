//go:build tray

package tray

import (
	"context"
	"time"

	"fyne.io/systray"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/dashboard"
	"github.com/Sternrassler/canvaspal/pkg/refresh"
)

// Run shows the tray icon and drives refresh passes until Quit is clicked.
func Run(agg refresh.Aggregator, cfg refresh.Config, logger zerolog.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	systray.Run(func() { onReady(ctx, cancel, agg, cfg, logger) }, cancel)
	return 0
}

func onReady(ctx context.Context, cancel context.CancelFunc, agg refresh.Aggregator, cfg refresh.Config, logger zerolog.Logger) {
	systray.SetTitle(Title(-1, 0))
	systray.SetTooltip("Canvas course dashboard")

	mHeader := systray.AddMenuItem("Loading courses...", "")
	mHeader.Disable()
	mNext := systray.AddMenuItem("", "")
	mNext.Disable()
	mNext.Hide()
	systray.AddSeparator()

	slots := make([]*systray.MenuItem, MaxCourseItems)
	for i := range slots {
		slots[i] = systray.AddMenuItem("", "")
		slots[i].Disable()
		slots[i].Hide()
	}
	mMore := systray.AddMenuItem("", "")
	mMore.Disable()
	mMore.Hide()

	systray.AddSeparator()
	mFooter := systray.AddMenuItem("", "")
	mFooter.Disable()
	mRefresh := systray.AddMenuItem("Refresh Now", "")
	mQuit := systray.AddMenuItem("Quit", "")

	view := dashboard.NewView(cfg.Interval)
	view.Compact = true
	mFooter.SetTitle(view.Footer())

	deliver := func(ds canvas.Dataset) {
		view.SetDataset(ds)
		visible := view.Visible()

		upcoming := ds.Upcoming(time.Now())
		systray.SetTitle(Title(len(visible), len(upcoming)))
		mHeader.SetTitle(Header(view.Updated()))
		if len(upcoming) > 0 {
			mNext.SetTitle(UpcomingLabel(upcoming[0]))
			mNext.Show()
		} else {
			mNext.Hide()
		}

		for i, slot := range slots {
			if i < len(visible) {
				slot.SetTitle(CourseLabel(visible[i]))
				slot.SetTooltip(visible[i].AssignmentsText())
				slot.Show()
				continue
			}
			slot.Hide()
		}

		if more := len(visible) - len(slots); more > 0 {
			mMore.SetTitle(MoreLabel(more))
			mMore.Show()
		} else {
			mMore.Hide()
		}
	}

	sched := refresh.New(agg, deliver, cfg, logger)

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("Refresh loop stopped")
		}
	}()

	go func() {
		for {
			select {
			case <-mRefresh.ClickedCh:
				sched.Trigger()
			case <-mQuit.ClickedCh:
				cancel()
				systray.Quit()
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}
