package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/optimistic"
	"github.com/justestif/historia/internal/validation"
)

// errBadDate is returned for a date field that is present but unparseable.
var errBadDate = errors.New("dates must look like 2006-01-02")

// isUserError reports whether err should be shown back to the user with
// the form instead of failing the request.
func isUserError(err error) bool {
	var fe *validation.FieldError
	var oe *validation.OverlapError
	switch {
	case errors.As(err, &fe), errors.As(err, &oe):
		return true
	}
	for _, target := range []error{
		validation.ErrTitleRequired,
		validation.ErrDateRequired,
		validation.ErrEndBeforeStart,
		validation.ErrPhaseOverlap,
		validation.ErrInvalidColor,
		validation.ErrTooLong,
		validation.ErrBirthInFuture,
		optimistic.ErrBirthdayMilestone,
		errBadDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// formValues snapshots the posted fields so a rejected form can be refilled.
func formValues(r *http.Request, fields ...string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f] = r.PostFormValue(f)
	}
	return out
}

// formDate parses an optional date field. Empty yields the zero time.
func formDate(r *http.Request, field string) (time.Time, error) {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return time.Time{}, errBadDate
	}
	return d, nil
}

// formDatePtr parses a date field for a patch. Absent fields yield nil.
func formDatePtr(r *http.Request, field string) (*time.Time, error) {
	if _, ok := r.PostForm[field]; !ok {
		return nil, nil
	}
	d, err := formDate(r, field)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// formStringPtr returns a pointer to the trimmed field, or nil when absent.
func formStringPtr(r *http.Request, field string) *string {
	if _, ok := r.PostForm[field]; !ok {
		return nil
	}
	v := strings.TrimSpace(r.PostFormValue(field))
	return &v
}

func parsePhaseInput(r *http.Request) (models.PhaseInput, error) {
	start, err := formDate(r, "start_date")
	if err != nil {
		return models.PhaseInput{}, err
	}
	end, err := formDate(r, "end_date")
	if err != nil {
		return models.PhaseInput{}, err
	}
	return models.PhaseInput{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: models.StringPtr(strings.TrimSpace(r.PostFormValue("description"))),
		StartDate:   start,
		EndDate:     end,
		Color:       r.PostFormValue("color"),
	}, nil
}

func parsePhasePatch(r *http.Request) (models.PhasePatch, error) {
	start, err := formDatePtr(r, "start_date")
	if err != nil {
		return models.PhasePatch{}, err
	}
	end, err := formDatePtr(r, "end_date")
	if err != nil {
		return models.PhasePatch{}, err
	}
	return models.PhasePatch{
		Title:       formStringPtr(r, "title"),
		Description: formStringPtr(r, "description"),
		StartDate:   start,
		EndDate:     end,
		Color:       formStringPtr(r, "color"),
	}, nil
}

func parseMemoryInput(r *http.Request) (models.MemoryInput, error) {
	d, err := formDate(r, "memory_date")
	if err != nil {
		return models.MemoryInput{}, err
	}
	return models.MemoryInput{
		Title:      strings.TrimSpace(r.PostFormValue("title")),
		Content:    models.StringPtr(strings.TrimSpace(r.PostFormValue("content"))),
		MemoryDate: d,
	}, nil
}

func parseMilestoneInput(r *http.Request) (models.MilestoneInput, error) {
	d, err := formDate(r, "milestone_date")
	if err != nil {
		return models.MilestoneInput{}, err
	}
	return models.MilestoneInput{
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Description:   models.StringPtr(strings.TrimSpace(r.PostFormValue("description"))),
		MilestoneDate: d,
	}, nil
}

// returnWeek reads the hidden "week" field forms use to come back to a
// week page. Zero means the dashboard.
func returnWeek(r *http.Request) int {
	n, err := strconv.Atoi(r.PostFormValue("week"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
