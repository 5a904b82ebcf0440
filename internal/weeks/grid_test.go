package weeks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/historia/internal/models"
)

func gridFixture(t *testing.T) ([]models.Phase, []models.Memory, []models.Milestone) {
	t.Helper()
	phases := []models.Phase{
		{ID: "school", StartDate: mustDate(t, "1995-09-01"), EndDate: mustDate(t, "2008-06-01"), Color: "#3B82F6"},
		{ID: "childhood", StartDate: mustDate(t, "1990-06-15"), EndDate: mustDate(t, "1995-08-31"), Color: "#84CC16"},
		{ID: "overlapping", StartDate: mustDate(t, "2007-01-01"), EndDate: mustDate(t, "2012-01-01"), Color: "#EF4444"},
		{ID: "inverted", StartDate: mustDate(t, "2020-01-09"), EndDate: mustDate(t, "2020-01-08"), Color: "#F43F5E"},
	}
	memories := []models.Memory{
		{ID: "beach", MemoryDate: mustDate(t, "1996-07-04")},
		{ID: "before-birth", MemoryDate: mustDate(t, "1989-01-01")},
		{ID: "same-week", MemoryDate: mustDate(t, "1996-07-03")},
		{ID: "far-future", MemoryDate: mustDate(t, "2200-01-01")},
	}
	milestones := []models.Milestone{
		{ID: "steps", MilestoneDate: mustDate(t, "1991-03-10")},
		{ID: "b1", MilestoneDate: mustDate(t, "1991-06-15"), IsBirthday: true},
		{ID: "grad", MilestoneDate: mustDate(t, "2008-06-15")},
	}
	return phases, memories, milestones
}

func TestProjector_MatchesAssemble(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	phases, memories, milestones := gridFixture(t)
	p := NewProjector(birth, 1774, phases, memories, milestones)

	for n := 1; n <= LifeWeeks100; n++ {
		want := Assemble(birth, n, 1774, phases, memories, milestones)
		got := p.Week(n)

		require.Equal(t, want.WeekNumber, got.WeekNumber)
		require.Equal(t, want.StartDate, got.StartDate, "week %d start", n)
		require.Equal(t, want.EndDate, got.EndDate, "week %d end", n)
		require.Equal(t, want.IsLived, got.IsLived, "week %d lived", n)
		require.Same(t, want.Phase, got.Phase, "week %d phase", n)
		require.Equal(t, want.Memories, got.Memories, "week %d memories", n)
		require.Equal(t, want.Milestones, got.Milestones, "week %d milestones", n)
		require.Equal(t, want.Color(), got.Color(), "week %d color", n)
	}
}

func TestProjectYear(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	phases, memories, milestones := gridFixture(t)

	year0 := ProjectYear(birth, 0, 1774, phases, memories, milestones)
	require.Len(t, year0, WeeksPerYear)
	for i, w := range year0 {
		assert.Equal(t, i+1, w.WeekNumber)
	}

	year3 := ProjectYear(birth, 3, 1774, phases, memories, milestones)
	require.Len(t, year3, WeeksPerYear)
	assert.Equal(t, 3*WeeksPerYear+1, year3[0].WeekNumber)
	assert.Equal(t, 4*WeeksPerYear, year3[WeeksPerYear-1].WeekNumber)
}

func TestProjectLife(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	phases, memories, milestones := gridFixture(t)

	for _, total := range []int{LifeWeeks100, LifeWeeks80} {
		life := ProjectLife(birth, 1774, phases, memories, milestones, total)
		require.Len(t, life, total)
		for i := 1; i < len(life); i++ {
			require.Greater(t, life[i].WeekNumber, life[i-1].WeekNumber)
		}
	}

	assert.Empty(t, ProjectLife(birth, 1774, nil, nil, nil, -1))
}

func TestProjector_BucketsPreserveOrder(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	_, memories, _ := gridFixture(t)
	p := NewProjector(birth, 1774, nil, memories, nil)

	w := p.Week(WeekIndexOf(birth, mustDate(t, "1996-07-04")))

	require.Len(t, w.Memories, 2)
	assert.Equal(t, "beach", w.Memories[0].ID)
	assert.Equal(t, "same-week", w.Memories[1].ID)
	assert.Equal(t, CategoryMemory, w.Category())
}

func TestYearsLived(t *testing.T) {
	assert.Equal(t, 1, YearsLived(0))
	assert.Equal(t, 1, YearsLived(52))
	assert.Equal(t, 2, YearsLived(53))
	assert.Equal(t, 35, YearsLived(1774))
}

func TestSummarize(t *testing.T) {
	phases, memories, milestones := gridFixture(t)

	s := Summarize(1774, phases, memories, milestones)

	assert.Equal(t, 34, s.Age)
	assert.Equal(t, 1774, s.WeeksLived)
	assert.Equal(t, 4, s.Phases)
	assert.Equal(t, 4, s.Memories)
	assert.Equal(t, 2, s.Milestones)
	assert.InDelta(t, 42.64, s.PercentLived, 0.01)

	assert.Equal(t, 100.0, Summarize(LifeWeeks100, nil, nil, nil).PercentLived)
	assert.Zero(t, Summarize(0, nil, nil, nil).PercentLived)
}
