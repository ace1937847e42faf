package canvas

import (
	"fmt"
	"strings"
)

// Display defaults for fields Canvas omits.
const (
	UnknownName    = "Unknown"
	NotAvailable   = "N/A"
	NoAssignments  = "No Assignments"
	NoModules      = "No Modules"
	workflowActive = "available"
)

// Course is one enrolled course with its resources, normalized for display.
type Course struct {
	ID          int64
	Name        string
	Term        string
	Assignments []Assignment
	Modules     []ModuleSummary
}

// Assignment of a course. DueAt is nil when Canvas reports no due date and
// PointsPossible is nil for ungraded assignments.
type Assignment struct {
	ID             int64
	Name           string
	DueAt          *string
	PointsPossible *float64
}

// ModuleSummary of a course. ItemsCount is nil when Canvas omits it.
type ModuleSummary struct {
	ID         int64
	Name       string
	ItemsCount *int
}

// Line renders the assignment as a single dashboard line.
func (a Assignment) Line() string {
	return fmt.Sprintf("- %s (Due: %s)", a.Name, FormatDueDate(a.DueAt))
}

// Line renders the module as a single dashboard line.
func (m ModuleSummary) Line() string {
	count := NotAvailable
	if m.ItemsCount != nil {
		count = fmt.Sprint(*m.ItemsCount)
	}
	return fmt.Sprintf("- %s (Items: %s)", m.Name, count)
}

// AssignmentsText joins the assignment lines, or returns "No Assignments".
func (c Course) AssignmentsText() string {
	if len(c.Assignments) == 0 {
		return NoAssignments
	}
	lines := make([]string, len(c.Assignments))
	for i, a := range c.Assignments {
		lines[i] = a.Line()
	}
	return strings.Join(lines, "\n")
}

// ModulesText joins the module lines, or returns "No Modules".
func (c Course) ModulesText() string {
	if len(c.Modules) == 0 {
		return NoModules
	}
	lines := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		lines[i] = m.Line()
	}
	return strings.Join(lines, "\n")
}

// DetailText is the full detail view of a course.
func (c Course) DetailText() string {
	return fmt.Sprintf("Course: %s\n\nTerm: %s\n\nAssignments:\n%s\n\nModules:\n%s",
		c.Name, c.Term, c.AssignmentsText(), c.ModulesText())
}

// Dataset is the ordered result of one complete aggregation pass.
type Dataset []Course

// Clone returns a copy that shares no slices with d.
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	for i, c := range d {
		c.Assignments = append([]Assignment(nil), c.Assignments...)
		c.Modules = append([]ModuleSummary(nil), c.Modules...)
		out[i] = c
	}
	return out
}

// Filter returns the courses whose name contains query, case-insensitively.
// An empty query matches every course.
func (d Dataset) Filter(query string) Dataset {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make(Dataset, 0, len(d))
	for _, c := range d {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// AssignmentCount is the total number of assignments across all courses.
func (d Dataset) AssignmentCount() int {
	n := 0
	for _, c := range d {
		n += len(c.Assignments)
	}
	return n
}
