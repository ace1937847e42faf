package dashboard

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// UpcomingColumns of the upcoming-assignment table.
var UpcomingColumns = []string{"Priority", "Due", "Days Left", "Course", "Assignment", "Points"}

var priorityStyles = map[canvas.PriorityLevel]lipgloss.Style{
	canvas.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3b30")).Bold(true),
	canvas.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9500")),
	canvas.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#34c759")),
}

// RenderUpcoming writes the ranked assignment table and a count line to w.
func RenderUpcoming(w io.Writer, items []canvas.Upcoming) error {
	rows := make([][]string, 0, len(items))
	for i, u := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			priorityStyles[u.Level()].Render(PriorityText(u)),
			canvas.FormatDueDate(u.Assignment.DueAt),
			DaysLeftText(u.DaysLeft),
			u.CourseName,
			u.Assignment.Name,
			pointsText(u.Assignment.PointsPossible),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(append([]string{"#"}, UpcomingColumns...)...).
		Rows(rows...)

	status := "No upcoming assignments"
	switch len(items) {
	case 0:
	case 1:
		status = "1 upcoming assignment"
	default:
		status = fmt.Sprintf("%d upcoming assignments", len(items))
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", t.String(), accentStyle.Render(status))
	return err
}

// PriorityText is the label of u, e.g. "High Priority (75%)".
func PriorityText(u canvas.Upcoming) string {
	return fmt.Sprintf("%s (%d%%)", u.Level(), int(math.Round(u.Priority*100)))
}

// DaysLeftText renders a day count from canvas.DaysUntilDue.
func DaysLeftText(days int) string {
	switch {
	case days <= 0:
		return "due now"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func pointsText(p *float64) string {
	if p == nil {
		return canvas.NotAvailable
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
