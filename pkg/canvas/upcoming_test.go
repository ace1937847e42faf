package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

var upcomingNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDaysUntilDue(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"within the hour", upcomingNow.Add(time.Hour), 1},
		{"exactly one day", upcomingNow.Add(24 * time.Hour), 1},
		{"just over a day", upcomingNow.Add(25 * time.Hour), 2},
		{"now", upcomingNow, 0},
		{"an hour ago", upcomingNow.Add(-time.Hour), 0},
		{"a day and an hour ago", upcomingNow.Add(-25 * time.Hour), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilDue(tt.due, upcomingNow))
		})
	}
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, PriorityHigh, LevelOf(0.71))
	assert.Equal(t, PriorityMedium, LevelOf(0.7))
	assert.Equal(t, PriorityMedium, LevelOf(0.41))
	assert.Equal(t, PriorityLow, LevelOf(0.4))
	assert.Equal(t, PriorityLow, LevelOf(0))

	assert.Equal(t, "High Priority", PriorityHigh.String())
	assert.Equal(t, "Medium Priority", PriorityMedium.String())
	assert.Equal(t, "Low Priority", PriorityLow.String())
}

func TestDataset_Upcoming(t *testing.T) {
	ds := Dataset{
		{ID: 1, Name: "Biology", Assignments: []Assignment{
			{ID: 11, Name: "Reading", DueAt: strPtr("2024-03-20T12:00:00Z")},
			{ID: 12, Name: "Exam", DueAt: strPtr("2024-03-11T10:00:00Z"), PointsPossible: floatPtr(100)},
			{ID: 13, Name: "Past", DueAt: strPtr("2024-03-01T12:00:00Z"), PointsPossible: floatPtr(100)},
			{ID: 14, Name: "Undated", PointsPossible: floatPtr(100)},
			{ID: 15, Name: "Fractional", DueAt: strPtr("2024-03-12T00:00:00.5Z")},
		}},
		{ID: 2, Name: "Chemistry", Assignments: []Assignment{
			{ID: 21, Name: "Quiz", DueAt: strPtr("2024-03-13T12:00:00Z"), PointsPossible: floatPtr(10)},
			{ID: 22, Name: "Lab", DueAt: strPtr("2024-03-12T12:00:00Z"), PointsPossible: floatPtr(100)},
		}},
	}

	got := ds.Upcoming(upcomingNow)
	require.Len(t, got, 4)

	var order []string
	for _, u := range got {
		order = append(order, u.Assignment.Name)
	}
	assert.Equal(t, []string{"Exam", "Lab", "Quiz", "Reading"}, order)

	exam := got[0]
	assert.Equal(t, int64(1), exam.CourseID)
	assert.Equal(t, "Biology", exam.CourseName)
	assert.Equal(t, 1, exam.DaysLeft)
	assert.Equal(t, time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC), exam.Due)
	assert.InDelta(t, 0.745, exam.Priority, 1e-9)
	assert.Equal(t, PriorityHigh, exam.Level())

	lab := got[1]
	assert.Equal(t, "Chemistry", lab.CourseName)
	assert.Equal(t, 2, lab.DaysLeft)
	assert.InDelta(t, 0.595, lab.Priority, 1e-9)
	assert.Equal(t, PriorityMedium, lab.Level())

	assert.InDelta(t, 0.185, got[2].Priority, 1e-9)
	assert.Equal(t, PriorityLow, got[2].Level())

	reading := got[3]
	assert.Equal(t, 10, reading.DaysLeft)
	assert.InDelta(t, 0.075, reading.Priority, 1e-9)
}

func TestDataset_Upcoming_TiesByDueDate(t *testing.T) {
	ds := Dataset{{ID: 1, Name: "History", Assignments: []Assignment{
		{ID: 1, Name: "Later", DueAt: strPtr("2024-03-20T12:00:00Z")},
		{ID: 2, Name: "Sooner", DueAt: strPtr("2024-03-20T06:00:00Z")},
	}}}

	got := ds.Upcoming(upcomingNow)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].Priority, got[1].Priority)
	assert.Equal(t, "Sooner", got[0].Assignment.Name)
	assert.Equal(t, "Later", got[1].Assignment.Name)
}

func TestDataset_Upcoming_DueNowIsIncluded(t *testing.T) {
	ds := Dataset{{ID: 1, Name: "Art", Assignments: []Assignment{
		{ID: 1, Name: "Sketch", DueAt: strPtr("2024-03-10T12:00:00Z"), PointsPossible: floatPtr(0)},
	}}}

	got := ds.Upcoming(upcomingNow)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].DaysLeft)
	assert.InDelta(t, 0.345, got[0].Priority, 1e-9)
}

func TestDataset_Upcoming_Empty(t *testing.T) {
	assert.Empty(t, Dataset(nil).Upcoming(upcomingNow))
	assert.Empty(t, Dataset{{ID: 1, Name: "Empty"}}.Upcoming(upcomingNow))
}
