package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var detailFetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "canvas_detail_fetch_failures_total",
	Help: "Per-course resource fetches that failed and were shown as empty",
}, []string{"resource"})

// Fetcher retrieves every element of a paginated list resource.
type Fetcher interface {
	FetchAll(ctx context.Context, baseURL string, params url.Values) ([]json.RawMessage, error)
}

// Aggregator builds a Dataset from the Canvas API.
type Aggregator struct {
	fetcher Fetcher
	apiBase string
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator. apiBase is the API root,
// e.g. "https://canvas.instructure.com/api/v1".
func NewAggregator(fetcher Fetcher, apiBase string, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		apiBase: strings.TrimRight(apiBase, "/"),
		logger:  logger,
	}
}

// Wire shapes of the Canvas resources used here.
type (
	courseResource struct {
		ID            *int64  `json:"id"`
		Name          *string `json:"name"`
		WorkflowState string  `json:"workflow_state"`
		Term          *struct {
			Name *string `json:"name"`
		} `json:"term"`
	}

	assignmentResource struct {
		ID             int64    `json:"id"`
		Name           *string  `json:"name"`
		DueAt          *string  `json:"due_at"`
		PointsPossible *float64 `json:"points_possible"`
	}

	moduleResource struct {
		ID         int64   `json:"id"`
		Name       *string `json:"name"`
		ItemsCount *int    `json:"items_count"`
	}
)

// courseListParams selects the user's active enrollments with their term.
func courseListParams() url.Values {
	return url.Values{
		"enrollment_state": {"active"},
		"include[]":        {"term"},
		"per_page":         {"100"},
	}
}

// FetchAllCourses runs one full pass. When the course list itself cannot be
// fetched it returns an empty Dataset and the error; detail failures only empty
// the affected course's list.
func (a *Aggregator) FetchAllCourses(ctx context.Context) (Dataset, error) {
	start := time.Now()

	raw, err := a.fetcher.FetchAll(ctx, a.url("users/self/courses"), courseListParams())
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to fetch course list")
		return Dataset{}, fmt.Errorf("fetch course list: %w", err)
	}

	ds := make(Dataset, 0, len(raw))
	seen := make(map[int64]bool, len(raw))

	for i, item := range raw {
		var rc courseResource
		if err := json.Unmarshal(item, &rc); err != nil {
			a.logger.Warn().Err(err).Int("index", i).Msg("Skipping undecodable course")
			continue
		}
		if rc.ID == nil || rc.WorkflowState != workflowActive {
			continue
		}
		if seen[*rc.ID] {
			a.logger.Debug().Int64("course_id", *rc.ID).Msg("Skipping duplicate course")
			continue
		}
		seen[*rc.ID] = true

		course := Course{
			ID:   *rc.ID,
			Name: orDefault(rc.Name, UnknownName),
			Term: NotAvailable,
		}
		if rc.Term != nil {
			course.Term = orDefault(rc.Term.Name, NotAvailable)
		}

		course.Assignments = a.fetchAssignments(ctx, course.ID)
		course.Modules = a.fetchModules(ctx, course.ID)

		ds = append(ds, course)
	}

	a.logger.Info().
		Int("courses", len(ds)).
		Int("listed", len(raw)).
		Int("assignments", ds.AssignmentCount()).
		Dur("duration", time.Since(start)).
		Msg("Course aggregation complete")

	return ds, nil
}

func (a *Aggregator) fetchAssignments(ctx context.Context, courseID int64) []Assignment {
	items := a.fetchDetail(ctx, courseID, "assignments")

	out := make([]Assignment, 0, len(items))
	for _, item := range items {
		var r assignmentResource
		if err := json.Unmarshal(item, &r); err != nil {
			a.logger.Warn().Err(err).Int64("course_id", courseID).Msg("Skipping undecodable assignment")
			continue
		}
		out = append(out, Assignment{
			ID:             r.ID,
			Name:           orDefault(r.Name, UnknownName),
			DueAt:          r.DueAt,
			PointsPossible: r.PointsPossible,
		})
	}
	return out
}

func (a *Aggregator) fetchModules(ctx context.Context, courseID int64) []ModuleSummary {
	items := a.fetchDetail(ctx, courseID, "modules")

	out := make([]ModuleSummary, 0, len(items))
	for _, item := range items {
		var r moduleResource
		if err := json.Unmarshal(item, &r); err != nil {
			a.logger.Warn().Err(err).Int64("course_id", courseID).Msg("Skipping undecodable module")
			continue
		}
		out = append(out, ModuleSummary{
			ID:         r.ID,
			Name:       orDefault(r.Name, UnknownName),
			ItemsCount: r.ItemsCount,
		})
	}
	return out
}

// fetchDetail fetches courses/{id}/{resource}. Failures yield nil.
func (a *Aggregator) fetchDetail(ctx context.Context, courseID int64, resource string) []json.RawMessage {
	items, err := a.fetcher.FetchAll(ctx, a.url(fmt.Sprintf("courses/%d/%s", courseID, resource)), nil)
	if err != nil {
		detailFetchFailuresTotal.WithLabelValues(resource).Inc()
		a.logger.Warn().
			Err(err).
			Int64("course_id", courseID).
			Str("resource", resource).
			Msg("Course detail fetch failed, showing empty list")
		return nil
	}
	return items
}

func (a *Aggregator) url(path string) string {
	return a.apiBase + "/" + path
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
