package canvas

import (
	"math"
	"sort"
	"time"
)

// Weights of the upcoming-assignment priority score. A score is in [0, 1).
const (
	pointsWeight      = 0.4
	courseGradeWeight = 0.3
	dueDateWeight     = 0.3

	// assumedCourseGrade stands in for the current course grade, which the
	// pipeline does not read.
	assumedCourseGrade = 0.85
)

// PriorityLevel buckets a priority score.
type PriorityLevel int

const (
	PriorityLow PriorityLevel = iota
	PriorityMedium
	PriorityHigh
)

// LevelOf returns the bucket of score: above 0.7 is high, above 0.4 medium.
func LevelOf(score float64) PriorityLevel {
	switch {
	case score > 0.7:
		return PriorityHigh
	case score > 0.4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (l PriorityLevel) String() string {
	switch l {
	case PriorityHigh:
		return "High Priority"
	case PriorityMedium:
		return "Medium Priority"
	default:
		return "Low Priority"
	}
}

// Upcoming is one not-yet-due assignment with its ranking inputs.
type Upcoming struct {
	CourseID   int64
	CourseName string
	Assignment Assignment
	Due        time.Time
	DaysLeft   int
	Priority   float64
}

// Level is the priority bucket of u.
func (u Upcoming) Level() PriorityLevel {
	return LevelOf(u.Priority)
}

// DaysUntilDue is the number of started days between now and due, rounded up.
// It is zero or negative once the due date has passed.
func DaysUntilDue(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// Upcoming returns every assignment due at or after now, across all courses,
// ordered by descending priority. Ties keep the earlier due date first.
// Assignments without a parseable due date are left out.
//
// The score combines the assignment's share of the largest points value in
// the list, a fixed course-grade term and the urgency 1/max(days, 1).
func (d Dataset) Upcoming(now time.Time) []Upcoming {
	var out []Upcoming
	maxPoints := 0.0

	for _, c := range d {
		for _, a := range c.Assignments {
			if a.DueAt == nil {
				continue
			}
			due, ok := ParseDueDate(*a.DueAt)
			if !ok || due.Before(now) {
				continue
			}
			if a.PointsPossible != nil && *a.PointsPossible > maxPoints {
				maxPoints = *a.PointsPossible
			}
			out = append(out, Upcoming{
				CourseID:   c.ID,
				CourseName: c.Name,
				Assignment: a,
				Due:        due,
				DaysLeft:   DaysUntilDue(due, now),
			})
		}
	}

	for i := range out {
		out[i].Priority = priority(out[i], maxPoints)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Due.Before(out[j].Due)
	})
	return out
}

func priority(u Upcoming, maxPoints float64) float64 {
	var pointsShare float64
	if p := u.Assignment.PointsPossible; p != nil && *p > 0 && maxPoints > 0 {
		pointsShare = *p / maxPoints
	}
	urgency := 1 / float64(max(u.DaysLeft, 1))

	return pointsShare*pointsWeight +
		(1-assumedCourseGrade)*courseGradeWeight +
		urgency*dueDateWeight
}
