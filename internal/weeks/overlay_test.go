package weeks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/historia/internal/models"
)

func TestPhaseForWeek(t *testing.T) {
	phases := []models.Phase{
		{ID: "school", StartDate: mustDate(t, "1995-09-01"), EndDate: mustDate(t, "2008-06-01")},
		{ID: "childhood", StartDate: mustDate(t, "1990-06-15"), EndDate: mustDate(t, "1995-08-31")},
	}

	tests := []struct {
		name       string
		start, end string
		wantID     string
	}{
		{"inside childhood", "1992-01-01", "1992-01-07", "childhood"},
		{"week spanning both phases", "1995-08-31", "1995-09-06", "childhood"},
		{"week starting on phase start", "1995-09-01", "1995-09-07", "school"},
		{"week ending on phase start", "1995-08-26", "1995-09-01", "childhood"},
		{"after all phases", "2010-01-01", "2010-01-07", ""},
		{"before all phases", "1980-01-01", "1980-01-07", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhaseForWeek(phases, mustDate(t, tt.start), mustDate(t, tt.end))
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestPhaseForWeek_OverlappingPhasesEarliestStartWins(t *testing.T) {
	phases := []models.Phase{
		{ID: "later", StartDate: mustDate(t, "2000-01-05"), EndDate: mustDate(t, "2000-12-31")},
		{ID: "earlier", StartDate: mustDate(t, "2000-01-01"), EndDate: mustDate(t, "2000-01-10")},
		{ID: "same-start", StartDate: mustDate(t, "2000-01-01"), EndDate: mustDate(t, "2000-02-01")},
	}

	got := PhaseForWeek(phases, mustDate(t, "2000-01-03"), mustDate(t, "2000-01-09"))

	require.NotNil(t, got)
	assert.Equal(t, "earlier", got.ID)
}

func TestPhaseForWeek_ReturnsPointerIntoInput(t *testing.T) {
	phases := []models.Phase{{ID: "p", StartDate: mustDate(t, "2000-01-01"), EndDate: mustDate(t, "2000-12-31")}}

	got := PhaseForWeek(phases, mustDate(t, "2000-03-01"), mustDate(t, "2000-03-07"))

	assert.Same(t, &phases[0], got)
}

func TestMemoriesForWeek_InclusiveAndOrdered(t *testing.T) {
	memories := []models.Memory{
		{ID: "end", MemoryDate: mustDate(t, "2000-01-07")},
		{ID: "outside", MemoryDate: mustDate(t, "2000-01-08")},
		{ID: "start", MemoryDate: mustDate(t, "2000-01-01")},
		{ID: "before", MemoryDate: mustDate(t, "1999-12-31")},
	}

	got := MemoriesForWeek(memories, mustDate(t, "2000-01-01"), mustDate(t, "2000-01-07"))

	require.Len(t, got, 2)
	assert.Equal(t, "end", got[0].ID)
	assert.Equal(t, "start", got[1].ID)
}

func TestMilestonesForWeek(t *testing.T) {
	milestones := []models.Milestone{
		{ID: "b1", MilestoneDate: mustDate(t, "1991-06-15"), IsBirthday: true},
		{ID: "steps", MilestoneDate: mustDate(t, "1991-03-10")},
	}

	got := MilestonesForWeek(milestones, mustDate(t, "1991-06-14"), mustDate(t, "1991-06-20"))

	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)
	assert.Empty(t, MilestonesForWeek(nil, mustDate(t, "1991-06-14"), mustDate(t, "1991-06-20")))
}

func TestResolve_PriorityOrder(t *testing.T) {
	tests := []struct {
		name                          string
		lived, milestone, memory, phase bool
		want                          Category
	}{
		{"future beats everything", false, true, true, true, CategoryFuture},
		{"milestone beats memory and phase", true, true, true, true, CategoryMilestone},
		{"milestone beats phase", true, true, false, true, CategoryMilestone},
		{"memory beats phase", true, false, true, true, CategoryMemory},
		{"phase", true, false, false, true, CategoryPhase},
		{"nothing", true, false, false, false, CategoryUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.lived, tt.milestone, tt.memory, tt.phase))
		})
	}
}

func TestCategoryColor(t *testing.T) {
	assert.Equal(t, ColorFuture, CategoryColor(CategoryFuture, "#22C55E"))
	assert.Equal(t, ColorMilestone, CategoryColor(CategoryMilestone, "#22C55E"))
	assert.Equal(t, ColorMemory, CategoryColor(CategoryMemory, "#22C55E"))
	assert.Equal(t, "#22C55E", CategoryColor(CategoryPhase, "#22C55E"))
	assert.Equal(t, ColorUndefined, CategoryColor(CategoryUndefined, ""))
}

func TestAssemble_MilestoneOutranksPhase(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	phases := []models.Phase{{ID: "early", Title: "Early Childhood", StartDate: birth, EndDate: mustDate(t, "1995-08-31"), Color: "#84CC16"}}
	milestones := []models.Milestone{{ID: "m", Title: "Came home", MilestoneDate: mustDate(t, "1990-06-16")}}

	w := Assemble(birth, 1, 1774, phases, nil, milestones)

	require.NotNil(t, w.Phase)
	assert.Equal(t, "early", w.Phase.ID)
	assert.Equal(t, CategoryMilestone, w.Category())
	assert.Equal(t, ColorMilestone, w.Color())
	assert.True(t, w.IsLived)
	assert.Equal(t, "1990-06-15", models.FormatDate(w.StartDate))
	assert.Equal(t, "1990-06-21", models.FormatDate(w.EndDate))
}

func TestAssemble_PhaseColorAndFuture(t *testing.T) {
	birth := mustDate(t, "1990-06-15")
	phases := []models.Phase{{ID: "p", StartDate: birth, EndDate: mustDate(t, "2090-01-01"), Color: "#A855F7"}}

	lived := Assemble(birth, 10, 100, phases, nil, nil)
	future := Assemble(birth, 101, 100, phases, nil, nil)
	boundary := Assemble(birth, 100, 100, phases, nil, nil)

	assert.Equal(t, "#A855F7", lived.Color())
	assert.Equal(t, CategoryFuture, future.Category())
	assert.Equal(t, ColorFuture, future.Color())
	assert.True(t, boundary.IsLived)
}
