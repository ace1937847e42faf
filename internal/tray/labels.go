// Package tray is the system-tray front end of the course dashboard.
package tray

import (
	"fmt"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
)

// MaxCourseItems is the number of course entries shown in the menu.
const MaxCourseItems = 15

// Title is the tray title for n courses with upcoming assignments not yet due;
// negative n means nothing loaded yet.
func Title(n, upcoming int) string {
	var courses string
	switch {
	case n < 0:
		return "Canvas: --"
	case n == 1:
		courses = "Canvas: 1 course"
	default:
		courses = fmt.Sprintf("Canvas: %d courses", n)
	}
	if upcoming == 0 {
		return courses
	}
	return fmt.Sprintf("%s, %d due", courses, upcoming)
}

// UpcomingLabel is the menu entry for the highest ranked upcoming assignment.
func UpcomingLabel(u canvas.Upcoming) string {
	return fmt.Sprintf("Next: %s (%s, %s)", u.Assignment.Name, u.CourseName, u.Level())
}

// Header is the disabled first menu entry.
func Header(updated time.Time) string {
	if updated.IsZero() {
		return "Loading courses..."
	}
	return "Updated " + updated.Format("15:04")
}

// CourseLabel is the menu entry for one course.
func CourseLabel(c canvas.Course) string {
	return fmt.Sprintf("%s (%d assignments, %d modules)", c.Name, len(c.Assignments), len(c.Modules))
}

// MoreLabel summarizes courses beyond MaxCourseItems.
func MoreLabel(n int) string {
	return fmt.Sprintf("... and %d more", n)
}
