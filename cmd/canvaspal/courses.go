package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/Sternrassler/canvaspal/pkg/dashboard"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Fetch and print your active courses",
	Long: `Run one aggregation pass and print the course table. Use --search to filter by
course name and --details to print the assignments and modules of one course.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		details, _ := cmd.Flags().GetInt64("details")
		compact, _ := cmd.Flags().GetBool("compact")

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ds, err := fetchOnce(cmd.Context(), a, "Fetching courses...")
		if err != nil {
			return fmt.Errorf("could not fetch courses: %w", err)
		}

		out := cmd.OutOrStdout()

		if details != 0 {
			course, ok := findCourse(ds, details)
			if !ok {
				return fmt.Errorf("no active course with id %d", details)
			}
			fmt.Fprintln(out, course.DetailText())
			return nil
		}

		view := dashboard.NewView(cfg.RefreshInterval)
		view.Compact = compact
		view.SetDataset(ds)
		view.SetQuery(search)
		return view.Render(out)
	},
}

func findCourse(ds canvas.Dataset, id int64) (canvas.Course, bool) {
	for _, c := range ds {
		if c.ID == id {
			return c, true
		}
	}
	return canvas.Course{}, false
}

func init() {
	rootCmd.AddCommand(coursesCmd)

	coursesCmd.Flags().StringP("search", "s", "", "Only show courses whose name contains this text")
	coursesCmd.Flags().Int64P("details", "d", 0, "Print details of the course with this id")
	coursesCmd.Flags().BoolP("compact", "c", false, "Show assignment and module counts instead of lists")
}
