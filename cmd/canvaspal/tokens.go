package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/pkg/ratelimit"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List loaded tokens by fingerprint with their last known quota",
	Long: `List the fingerprint of every token in rotation order. Quota columns come from
the last Canvas response seen for that token and are only shared between runs
when REDIS_URL is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				style := lipgloss.NewStyle().Padding(0, 1)
				if row == table.HeaderRow {
					return style.Bold(true)
				}
				return style
			}).
			Headers("#", "Fingerprint", "Remaining", "Last Cost", "Last Seen")

		for i, fp := range a.pool.Fingerprints() {
			remaining, cost, seen := "-", "-", "never"

			state, err := a.tracker.GetState(cmd.Context(), fp)
			switch {
			case errors.Is(err, ratelimit.ErrNoState):
			case err != nil:
				return fmt.Errorf("read quota state: %w", err)
			default:
				remaining = strconv.FormatFloat(state.Remaining, 'f', 1, 64)
				if state.IsLow {
					remaining += " (low)"
				}
				cost = strconv.FormatFloat(state.LastCost, 'f', 1, 64)
				seen = state.LastUpdate.Local().Format(time.DateTime)
			}

			t.Row(strconv.Itoa(i+1), fp, remaining, cost, seen)
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
