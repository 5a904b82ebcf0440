// Package validation checks journal inputs before they are applied. A
// failed check blocks the whole mutation; nothing is partially applied.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/justestif/historia/internal/models"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrDateRequired   = errors.New("date is required")
	ErrEndBeforeStart = errors.New("end date must be on or after the start date")
	ErrPhaseOverlap   = errors.New("phase overlaps an existing phase")
	ErrInvalidColor   = errors.New("color must be one of the phase palette colors")
	ErrTooLong        = errors.New("value is too long")
	ErrBirthInFuture  = errors.New("date of birth cannot be in the future")
)

// validate is shared by all checks. Initialized in init() with the palette
// validator.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("palette", validatePalette)
}

func validatePalette(fl validator.FieldLevel) bool {
	return models.IsPaletteColor(fl.Field().String())
}

// FieldError is a struct-tag failure on a single input field. It unwraps to
// one of the package sentinels.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Tag == "max" {
		return fmt.Sprintf("%s must be at most %s characters", strings.ToLower(e.Field), e.Param)
	}
	return e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }

// OverlapError names the phase a new or edited phase collides with.
type OverlapError struct {
	Phase models.Phase
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("phase overlaps %q (%s to %s)",
		e.Phase.Title, models.FormatDate(e.Phase.StartDate), models.FormatDate(e.Phase.EndDate))
}

func (e *OverlapError) Unwrap() error { return ErrPhaseOverlap }

// Phase validates a phase against its own fields and against existing
// phases. The phase with id excludeID is skipped, so an edit never collides
// with its previous version.
func Phase(in models.PhaseInput, existing []models.Phase, excludeID string) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return ErrDateRequired
	}
	if err := structErr(validate.Struct(in)); err != nil {
		return err
	}
	if in.EndDate.Before(in.StartDate) {
		return ErrEndBeforeStart
	}
	if other, ok := FindOverlap(in.StartDate, in.EndDate, existing, excludeID); ok {
		return &OverlapError{Phase: other}
	}
	return nil
}

// FindOverlap returns the first phase sharing at least one day with
// [start, end], skipping excludeID.
func FindOverlap(start, end time.Time, existing []models.Phase, excludeID string) (models.Phase, bool) {
	for _, p := range existing {
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		if !start.After(p.EndDate) && !end.Before(p.StartDate) {
			return p, true
		}
	}
	return models.Phase{}, false
}

// Profile validates a new profile. today bounds the date of birth.
func Profile(in models.ProfileInput, today time.Time) error {
	if in.DateOfBirth.IsZero() {
		return ErrDateRequired
	}
	if err := structErr(validate.Struct(in)); err != nil {
		return err
	}
	if in.DateOfBirth.After(today) {
		return ErrBirthInFuture
	}
	return nil
}

// Memory validates a memory.
func Memory(in models.MemoryInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.MemoryDate.IsZero() {
		return ErrDateRequired
	}
	return structErr(validate.Struct(in))
}

// Milestone validates a milestone.
func Milestone(in models.MilestoneInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.MilestoneDate.IsZero() {
		return ErrDateRequired
	}
	return structErr(validate.Struct(in))
}

// structErr converts the first validator failure into a *FieldError.
func structErr(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating input: %w", err)
	}

	fe := verrs[0]
	out := &FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	switch {
	case fe.Tag() == "palette" || fe.Tag() == "hexcolor" || fe.Field() == "Color":
		out.Err = ErrInvalidColor
	case fe.Tag() == "max":
		out.Err = ErrTooLong
	case fe.Field() == "Title" || fe.Field() == "FullName":
		out.Err = ErrTitleRequired
	default:
		out.Err = ErrDateRequired
	}
	return out
}
