package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/canvas"

	ics "github.com/arran4/golang-ical"
)

// GenerateICS writes one event per assignment with a parseable due date, starting
// and ending at the due time, and returns the number of events written.
func GenerateICS(ds canvas.Dataset, w io.Writer) (int, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//canvaspal//Canvas assignments//EN")
	cal.SetXWRCalName("Canvas assignments")

	now := time.Now().UTC()
	count := 0

	for _, c := range ds {
		for i, a := range c.Assignments {
			if a.DueAt == nil {
				continue
			}
			due, ok := canvas.ParseDueDate(*a.DueAt)
			if !ok {
				continue // raw strings stay dashboard-only
			}

			event := cal.AddEvent(eventUID(c.ID, i, a))
			event.SetCreatedTime(now)
			event.SetDtStampTime(now)
			event.SetStartAt(due)
			event.SetEndAt(due)
			event.SetSummary(fmt.Sprintf("%s: %s", c.Name, a.Name))
			event.SetDescription(fmt.Sprintf("Course: %s\nTerm: %s\nDue: %s", c.Name, c.Term, canvas.FormatDueDate(a.DueAt)))
			count++
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return 0, fmt.Errorf("serialize calendar: %w", err)
	}
	return count, nil
}

// eventUID is stable across exports. Assignments without an id fall back to
// their position in the course.
func eventUID(courseID int64, index int, a canvas.Assignment) string {
	if a.ID == 0 {
		return fmt.Sprintf("course-%d-assignment-%d@canvaspal", courseID, index)
	}
	return fmt.Sprintf("assignment-%d@canvaspal", a.ID)
}
