package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/canvaspal/pkg/exporter"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export assignment due dates to an ICS file",
	Long:  `Run one aggregation pass and write every assignment with a due date to an iCalendar file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ds, err := fetchOnce(cmd.Context(), a, fmt.Sprintf("Exporting assignments to %s...", output))
		if err != nil {
			return fmt.Errorf("could not fetch courses: %w", err)
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		n, err := exporter.GenerateICS(ds, file)
		if err != nil {
			return fmt.Errorf("failed to generate ICS: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d assignments from %d courses to %s\n", n, len(ds), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "assignments.ics", "Output file path")
}
