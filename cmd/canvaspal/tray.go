package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/internal/tray"
	"github.com/Sternrassler/canvaspal/pkg/logging"
	"github.com/Sternrassler/canvaspal/pkg/refresh"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Show your courses in the system tray",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		code := tray.Run(a.agg, refresh.Config{Interval: cfg.RefreshInterval}, logging.NewLogger("refresh"))
		if code != 0 {
			return fmt.Errorf("tray exited with status %d", code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trayCmd)
}
