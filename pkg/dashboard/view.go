// Package dashboard holds the searchable course view shown by the front ends.
//
// A View is not safe for concurrent use. Front ends mutate it only from the
// refresh scheduler's loop goroutine (deliver and Post).
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ErrNoSuchRow is returned by Select for rows outside the visible list.
var ErrNoSuchRow = errors.New("no such row")

// Columns of the course table.
var Columns = []string{"Course Name", "Course ID", "Term", "Assignments", "Modules"}

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View is the dashboard state: the full dataset, the search query and the
// filtered rows derived from both.
type View struct {
	// Compact shows counts instead of the full assignment and module lists.
	Compact bool

	dataset  canvas.Dataset
	visible  canvas.Dataset
	query    string
	interval time.Duration
	updated  time.Time
}

// NewView creates an empty view for a dashboard refreshed every interval.
func NewView(interval time.Duration) *View {
	return &View{
		interval: interval,
		visible:  canvas.Dataset{},
	}
}

// SetDataset replaces the full dataset and re-applies the current query.
func (v *View) SetDataset(ds canvas.Dataset) {
	v.dataset = ds.Clone()
	v.updated = time.Now()
	v.refilter()
}

// SetQuery changes the search query and re-applies it.
func (v *View) SetQuery(q string) {
	v.query = q
	v.refilter()
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.query
}

// Visible returns the rows matching the current query, in dataset order.
func (v *View) Visible() canvas.Dataset {
	return v.visible
}

// Total returns the number of courses in the full dataset.
func (v *View) Total() int {
	return len(v.dataset)
}

// Updated returns when the dataset was last replaced.
func (v *View) Updated() time.Time {
	return v.updated
}

// Select returns the detail text of visible row (0-based).
func (v *View) Select(row int) (string, error) {
	if row < 0 || row >= len(v.visible) {
		return "", fmt.Errorf("%w: %d (%d visible)", ErrNoSuchRow, row+1, len(v.visible))
	}
	return v.visible[row].DetailText(), nil
}

// Footer describes the refresh schedule.
func (v *View) Footer() string {
	return fmt.Sprintf("Auto refreshes every %s and on startup", humanInterval(v.interval))
}

// Render writes the table of visible courses and the footer to w.
func (v *View) Render(w io.Writer) error {
	rows := make([][]string, 0, len(v.visible))
	for i, c := range v.visible {
		rows = append(rows, v.row(i, c))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		BorderRow(!v.Compact).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(append([]string{"#"}, Columns...)...).
		Rows(rows...)

	var status string
	switch {
	case v.dataset == nil:
		status = "Loading courses..."
	case len(v.visible) == 0 && v.query != "":
		status = fmt.Sprintf("No courses match %q", v.query)
	case len(v.visible) == 0:
		status = "No active courses"
	default:
		status = fmt.Sprintf("%d of %d courses", len(v.visible), len(v.dataset))
		if v.query != "" {
			status += fmt.Sprintf(" matching %q", v.query)
		}
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", t.String(), accentStyle.Render(status), dimStyle.Render(v.Footer()))
	return err
}

func (v *View) row(i int, c canvas.Course) []string {
	assignments, modules := c.AssignmentsText(), c.ModulesText()
	if v.Compact {
		assignments, modules = strconv.Itoa(len(c.Assignments)), strconv.Itoa(len(c.Modules))
	}
	return []string{
		strconv.Itoa(i + 1),
		c.Name,
		strconv.FormatInt(c.ID, 10),
		c.Term,
		assignments,
		modules,
	}
}

func (v *View) refilter() {
	v.visible = v.dataset.Filter(v.query)
}

func humanInterval(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "hour"
	case d == time.Minute:
		return "minute"
	case d > 0 && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d > 0 && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
