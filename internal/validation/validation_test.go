package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/historia/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestPhase(t *testing.T) {
	existing := []models.Phase{
		{ID: "college", Title: "College", StartDate: mustDate(t, "1995-01-01"), EndDate: mustDate(t, "1995-12-31")},
	}
	valid := func() models.PhaseInput {
		return models.PhaseInput{
			Title:     "First job",
			StartDate: mustDate(t, "1996-01-01"),
			EndDate:   mustDate(t, "1998-06-30"),
			Color:     "#22C55E",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.PhaseInput)
		exclude string
		wantErr error
	}{
		{"valid", func(*models.PhaseInput) {}, "", nil},
		{"single day", func(in *models.PhaseInput) { in.EndDate = in.StartDate }, "", nil},
		{"blank title", func(in *models.PhaseInput) { in.Title = "   " }, "", ErrTitleRequired},
		{"missing start", func(in *models.PhaseInput) { in.StartDate = time.Time{} }, "", ErrDateRequired},
		{"missing end", func(in *models.PhaseInput) { in.EndDate = time.Time{} }, "", ErrDateRequired},
		{"end before start", func(in *models.PhaseInput) { in.EndDate = mustDate(t, "1995-12-31"); in.StartDate = mustDate(t, "1996-01-02") }, "", ErrEndBeforeStart},
		{"color outside palette", func(in *models.PhaseInput) { in.Color = "#123456" }, "", ErrInvalidColor},
		{"color not hex", func(in *models.PhaseInput) { in.Color = "green" }, "", ErrInvalidColor},
		{"title too long", func(in *models.PhaseInput) { in.Title = strings.Repeat("a", 201) }, "", ErrTooLong},
		{
			name: "overlaps existing",
			mutate: func(in *models.PhaseInput) {
				in.StartDate = mustDate(t, "1995-06-01")
				in.EndDate = mustDate(t, "1996-06-01")
			},
			wantErr: ErrPhaseOverlap,
		},
		{
			name: "touches existing end day",
			mutate: func(in *models.PhaseInput) {
				in.StartDate = mustDate(t, "1995-12-31")
			},
			wantErr: ErrPhaseOverlap,
		},
		{
			name: "editing itself",
			mutate: func(in *models.PhaseInput) {
				in.StartDate = mustDate(t, "1995-02-01")
				in.EndDate = mustDate(t, "1995-11-30")
			},
			exclude: "college",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)

			err := Phase(in, existing, tt.exclude)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPhase_OverlapErrorNamesPhase(t *testing.T) {
	existing := []models.Phase{
		{ID: "college", Title: "College", StartDate: mustDate(t, "1995-01-01"), EndDate: mustDate(t, "1995-12-31")},
	}
	in := models.PhaseInput{
		Title:     "Gap year",
		StartDate: mustDate(t, "1995-06-01"),
		EndDate:   mustDate(t, "1996-06-01"),
		Color:     "#F97316",
	}

	err := Phase(in, existing, "")

	var overlap *OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, "college", overlap.Phase.ID)
	assert.Contains(t, err.Error(), `"College"`)
	assert.Contains(t, err.Error(), "1995-01-01")
}

func TestFindOverlap(t *testing.T) {
	existing := []models.Phase{
		{ID: "a", StartDate: mustDate(t, "2000-01-01"), EndDate: mustDate(t, "2000-12-31")},
		{ID: "b", StartDate: mustDate(t, "2002-01-01"), EndDate: mustDate(t, "2002-12-31")},
	}

	_, ok := FindOverlap(mustDate(t, "2001-01-01"), mustDate(t, "2001-12-31"), existing, "")
	assert.False(t, ok)

	p, ok := FindOverlap(mustDate(t, "2001-06-01"), mustDate(t, "2002-01-01"), existing, "")
	assert.True(t, ok)
	assert.Equal(t, "b", p.ID)

	_, ok = FindOverlap(mustDate(t, "2002-06-01"), mustDate(t, "2002-07-01"), existing, "b")
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	long := strings.Repeat("x", 10001)

	assert.NoError(t, Memory(models.MemoryInput{Title: "Beach", MemoryDate: mustDate(t, "1996-07-04")}))
	assert.ErrorIs(t, Memory(models.MemoryInput{MemoryDate: mustDate(t, "1996-07-04")}), ErrTitleRequired)
	assert.ErrorIs(t, Memory(models.MemoryInput{Title: "Beach"}), ErrDateRequired)
	assert.ErrorIs(t, Memory(models.MemoryInput{Title: "Beach", Content: &long, MemoryDate: mustDate(t, "1996-07-04")}), ErrTooLong)
}

func TestMilestone(t *testing.T) {
	assert.NoError(t, Milestone(models.MilestoneInput{Title: "First steps", MilestoneDate: mustDate(t, "1991-03-10")}))
	assert.ErrorIs(t, Milestone(models.MilestoneInput{Title: "", MilestoneDate: mustDate(t, "1991-03-10")}), ErrTitleRequired)
	assert.ErrorIs(t, Milestone(models.MilestoneInput{Title: "First steps"}), ErrDateRequired)
}

func TestFieldError_Message(t *testing.T) {
	err := Phase(models.PhaseInput{
		Title:     strings.Repeat("a", 201),
		StartDate: mustDate(t, "2000-01-01"),
		EndDate:   mustDate(t, "2000-01-02"),
		Color:     "#22C55E",
	}, nil, "")

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Title", fe.Field)
	assert.Equal(t, "title must be at most 200 characters", fe.Error())
}

func TestProfile(t *testing.T) {
	today := mustDate(t, "2024-06-15")
	long := strings.Repeat("n", 201)

	assert.NoError(t, Profile(models.ProfileInput{DateOfBirth: mustDate(t, "1990-06-15")}, today))
	assert.NoError(t, Profile(models.ProfileInput{DateOfBirth: today}, today))
	assert.ErrorIs(t, Profile(models.ProfileInput{}, today), ErrDateRequired)
	assert.ErrorIs(t, Profile(models.ProfileInput{DateOfBirth: mustDate(t, "2024-06-16")}, today), ErrBirthInFuture)
	assert.ErrorIs(t, Profile(models.ProfileInput{FullName: &long, DateOfBirth: mustDate(t, "1990-06-15")}, today), ErrTooLong)
}
