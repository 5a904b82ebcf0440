package weeks

import (
	"time"

	"github.com/justestif/historia/internal/models"
)

// WeekData is the per-week view model. It is recomputed on demand and never
// persisted.
type WeekData struct {
	WeekNumber int
	StartDate  time.Time
	EndDate    time.Time
	IsLived    bool
	Phase      *models.Phase
	Memories   []models.Memory
	Milestones []models.Milestone
}

// Category returns the week's winning annotation type.
func (w WeekData) Category() Category {
	return Resolve(w.IsLived, len(w.Milestones) > 0, len(w.Memories) > 0, w.Phase != nil)
}

// Color returns the week's single representative color.
func (w WeekData) Color() string {
	phaseColor := ""
	if w.Phase != nil {
		phaseColor = w.Phase.Color
	}
	return CategoryColor(w.Category(), phaseColor)
}

// Assemble computes the view model of one week by filtering the full
// collections. Use a Projector when assembling many weeks.
func Assemble(
	birth time.Time,
	weekNumber, weeksLived int,
	phases []models.Phase,
	memories []models.Memory,
	milestones []models.Milestone,
) WeekData {
	start, end := WeekRange(birth, weekNumber)
	return WeekData{
		WeekNumber: weekNumber,
		StartDate:  start,
		EndDate:    end,
		IsLived:    weekNumber <= weeksLived,
		Phase:      PhaseForWeek(phases, start, end),
		Memories:   MemoriesForWeek(memories, start, end),
		Milestones: MilestonesForWeek(milestones, start, end),
	}
}
