package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Sternrassler/canvaspal/pkg/canvas"

	ics "github.com/arran4/golang-ical"
)

func strPtr(s string) *string { return &s }

func TestGenerateICS(t *testing.T) {
	ds := canvas.Dataset{
		{
			ID:   101,
			Name: "Biology 101",
			Term: "Spring 2024",
			Assignments: []canvas.Assignment{
				{ID: 1, Name: "Lab Report", DueAt: strPtr("2024-03-15T23:59:00Z")},
				{ID: 2, Name: "Reading", DueAt: nil},
				{ID: 3, Name: "Essay", DueAt: strPtr("soon")},
			},
		},
		{
			ID:          202,
			Name:        "Chemistry",
			Term:        "N/A",
			Assignments: []canvas.Assignment{{ID: 4, Name: "Quiz", DueAt: strPtr("2024-04-01T08:00:00Z")}},
		},
	}

	var buf bytes.Buffer
	n, err := GenerateICS(ds, &buf)
	if err != nil {
		t.Fatalf("GenerateICS failed: %v", err)
	}

	if n != 2 {
		t.Errorf("Expected 2 events, got %d", n)
	}

	output := buf.String()

	if !strings.Contains(output, "SUMMARY:Biology 101: Lab Report") {
		t.Errorf("Expected ICS to contain assignment summary, got: \n%s", output)
	}

	if !strings.Contains(output, "DTSTART:20240315T235900Z") {
		t.Errorf("Expected UTC start time in ICS, got: \n%s", output)
	}

	if !strings.Contains(output, "UID:assignment-4@canvaspal") {
		t.Errorf("Expected assignment UID in ICS")
	}

	if strings.Contains(output, "Reading") || strings.Contains(output, "Essay") {
		t.Errorf("Assignments without a parseable due date must be skipped")
	}

	cal, err := ics.ParseCalendar(strings.NewReader(output))
	if err != nil {
		t.Fatalf("Generated ICS does not parse: %v", err)
	}
	if got := len(cal.Events()); got != 2 {
		t.Errorf("Expected 2 parsed events, got %d", got)
	}
	if got := cal.Events()[1].GetProperty(ics.ComponentPropertySummary).Value; got != "Chemistry: Quiz" {
		t.Errorf("Expected second event summary %q, got %q", "Chemistry: Quiz", got)
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := GenerateICS(canvas.Dataset{}, &buf)
	if err != nil {
		t.Fatalf("GenerateICS failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 events, got %d", n)
	}
	if !strings.Contains(buf.String(), "BEGIN:VCALENDAR") {
		t.Errorf("Expected an empty calendar, got: \n%s", buf.String())
	}
}

func TestGenerateICS_UniqueUIDsWithoutAssignmentID(t *testing.T) {
	ds := canvas.Dataset{{
		ID:   7,
		Name: "Art",
		Assignments: []canvas.Assignment{
			{Name: "Sketch", DueAt: strPtr("2024-03-15T23:59:00Z")},
			{Name: "Portfolio", DueAt: strPtr("2024-03-20T23:59:00Z")},
			{ID: 9, Name: "Critique", DueAt: strPtr("2024-03-22T23:59:00Z")},
		},
	}}

	var buf bytes.Buffer
	if _, err := GenerateICS(ds, &buf); err != nil {
		t.Fatalf("GenerateICS failed: %v", err)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Generated ICS does not parse: %v", err)
	}

	want := []string{
		"course-7-assignment-0@canvaspal",
		"course-7-assignment-1@canvaspal",
		"assignment-9@canvaspal",
	}
	events := cal.Events()
	if len(events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if got := e.GetProperty(ics.ComponentPropertyUniqueId).Value; got != want[i] {
			t.Errorf("event %d UID = %q, want %q", i, got, want[i])
		}
	}
}
