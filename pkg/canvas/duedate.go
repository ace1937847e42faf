package canvas

import "time"

const (
	// NoDueDate is shown for assignments without a due date.
	NoDueDate = "No Due Date"

	dueDateLayout  = "2006-01-02T15:04:05Z"
	dueDateDisplay = "January 02, 2006 at 03:04 PM"
)

// ParseDueDate parses a Canvas due_at timestamp (UTC, second precision).
// Anything other than exactly that form, including fractional seconds, is rejected.
func ParseDueDate(s string) (time.Time, bool) {
	t, err := time.Parse(dueDateLayout, s)
	if err != nil || t.Format(dueDateLayout) != s {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FormatDueDate renders a due_at value for display. Values that do not parse
// are shown as they are.
func FormatDueDate(dueAt *string) string {
	if dueAt == nil || *dueAt == "" {
		return NoDueDate
	}
	t, ok := ParseDueDate(*dueAt)
	if !ok {
		return *dueAt
	}
	return t.Format(dueDateDisplay)
}
