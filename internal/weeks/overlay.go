package weeks

import (
	"time"

	"github.com/justestif/historia/internal/models"
)

// Category is the annotation type that decides a week's color.
type Category string

const (
	CategoryFuture    Category = "future"
	CategoryMilestone Category = "milestone"
	CategoryMemory    Category = "memory"
	CategoryPhase     Category = "phase"
	CategoryUndefined Category = "undefined"
)

// Fixed colors of the non-phase categories.
const (
	ColorFuture    = "#FFFFFF"
	ColorMilestone = "#F59E0B"
	ColorMemory    = "#3B82F6"
	ColorUndefined = "#9CA3AF"
)

// within reports whether d falls in [start, end] inclusive.
func within(d, start, end time.Time) bool {
	d = Day(d)
	return !d.Before(Day(start)) && !d.After(Day(end))
}

// overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share a day.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Day(aStart).After(Day(bEnd)) && !Day(aEnd).Before(Day(bStart))
}

// PhaseForWeek returns the phase overlapping [start, end], or nil.
// Phases are validated not to overlap each other; if they do anyway, the one
// with the earliest start date wins and ties keep collection order.
func PhaseForWeek(phases []models.Phase, start, end time.Time) *models.Phase {
	var best *models.Phase
	for i := range phases {
		p := &phases[i]
		if !overlaps(start, end, p.StartDate, p.EndDate) {
			continue
		}
		if best == nil || Day(p.StartDate).Before(Day(best.StartDate)) {
			best = p
		}
	}
	return best
}

// MemoriesForWeek returns the memories dated within [start, end], in input order.
func MemoriesForWeek(memories []models.Memory, start, end time.Time) []models.Memory {
	var out []models.Memory
	for _, m := range memories {
		if within(m.MemoryDate, start, end) {
			out = append(out, m)
		}
	}
	return out
}

// MilestonesForWeek returns the milestones dated within [start, end], in input order.
func MilestonesForWeek(milestones []models.Milestone, start, end time.Time) []models.Milestone {
	var out []models.Milestone
	for _, m := range milestones {
		if within(m.MilestoneDate, start, end) {
			out = append(out, m)
		}
	}
	return out
}

// Resolve picks the category of a week. The order is fixed:
// future, milestone, memory, phase, undefined.
func Resolve(isLived, hasMilestone, hasMemory, hasPhase bool) Category {
	switch {
	case !isLived:
		return CategoryFuture
	case hasMilestone:
		return CategoryMilestone
	case hasMemory:
		return CategoryMemory
	case hasPhase:
		return CategoryPhase
	default:
		return CategoryUndefined
	}
}

// CategoryColor returns the display color for c. phaseColor is used only
// for CategoryPhase.
func CategoryColor(c Category, phaseColor string) string {
	switch c {
	case CategoryFuture:
		return ColorFuture
	case CategoryMilestone:
		return ColorMilestone
	case CategoryMemory:
		return ColorMemory
	case CategoryPhase:
		return phaseColor
	default:
		return ColorUndefined
	}
}
