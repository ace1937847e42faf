package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/dashboard"
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Rank upcoming assignments across all courses",
	Long: `Run one aggregation pass and list every assignment that is not yet due, ranked
by priority. Priority grows as the due date gets closer and with the points the
assignment is worth relative to the others in the list.

Above 70% an assignment is High Priority, above 40% Medium Priority.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		within, _ := cmd.Flags().GetInt("within")

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ds, err := fetchOnce(cmd.Context(), a, "Fetching assignments...")
		if err != nil {
			return fmt.Errorf("could not fetch courses: %w", err)
		}

		items := selectUpcoming(ds.Upcoming(time.Now()), within, limit)
		return dashboard.RenderUpcoming(cmd.OutOrStdout(), items)
	},
}

// selectUpcoming keeps items due within the given number of days (0 keeps
// all) and then at most limit of them (0 keeps all).
func selectUpcoming(items []canvas.Upcoming, within, limit int) []canvas.Upcoming {
	if within > 0 {
		kept := items[:0:0]
		for _, u := range items {
			if u.DaysLeft <= within {
				kept = append(kept, u)
			}
		}
		items = kept
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func init() {
	rootCmd.AddCommand(upcomingCmd)

	upcomingCmd.Flags().IntP("limit", "n", 0, "Show at most this many assignments")
	upcomingCmd.Flags().IntP("within", "w", 0, "Only show assignments due within this many days")
}
