package weeks

import (
	"sort"
	"time"

	"github.com/justestif/historia/internal/models"
)

// Common full-life grid sizes.
const (
	LifeWeeks100 = 100 * WeeksPerYear
	LifeWeeks80  = 80 * WeeksPerYear
)

// phaseSpan is the inclusive range of week indices a phase touches.
type phaseSpan struct {
	first, last int
	phase       *models.Phase
}

// Projector assembles many weeks from one set of collections. Memories and
// milestones are bucketed by week index up front, so projecting the whole
// life costs O(weeks + entries) instead of O(weeks × entries).
//
// A Projector holds pointers into the phase slice it was built from and
// must not outlive modifications to it.
type Projector struct {
	birth      time.Time
	weeksLived int
	spans      []phaseSpan
	memories   map[int][]models.Memory
	milestones map[int][]models.Milestone
}

// NewProjector buckets the collections for birth.
func NewProjector(
	birth time.Time,
	weeksLived int,
	phases []models.Phase,
	memories []models.Memory,
	milestones []models.Milestone,
) *Projector {
	p := &Projector{
		birth:      Day(birth),
		weeksLived: weeksLived,
		spans:      make([]phaseSpan, 0, len(phases)),
		memories:   make(map[int][]models.Memory),
		milestones: make(map[int][]models.Milestone),
	}

	for i := range phases {
		ph := &phases[i]
		p.spans = append(p.spans, phaseSpan{
			first: WeekIndexOf(birth, ph.StartDate),
			last:  WeekIndexOf(birth, ph.EndDate),
			phase: ph,
		})
	}
	// Earliest start wins; the stable sort keeps collection order on ties.
	sort.SliceStable(p.spans, func(i, j int) bool {
		return Day(p.spans[i].phase.StartDate).Before(Day(p.spans[j].phase.StartDate))
	})

	for _, m := range memories {
		idx := WeekIndexOf(birth, m.MemoryDate)
		p.memories[idx] = append(p.memories[idx], m)
	}
	for _, m := range milestones {
		idx := WeekIndexOf(birth, m.MilestoneDate)
		p.milestones[idx] = append(p.milestones[idx], m)
	}

	return p
}

// Week assembles week n. The result equals Assemble for the same inputs.
func (p *Projector) Week(n int) WeekData {
	start, end := WeekRange(p.birth, n)
	w := WeekData{
		WeekNumber: n,
		StartDate:  start,
		EndDate:    end,
		IsLived:    n <= p.weeksLived,
		Memories:   p.memories[n],
		Milestones: p.milestones[n],
	}
	for _, s := range p.spans {
		if s.first <= n && n <= s.last {
			w.Phase = s.phase
			break
		}
	}
	return w
}

// Year returns the 52 weeks of year yearIndex (0-based).
func (p *Projector) Year(yearIndex int) []WeekData {
	first := yearIndex*WeeksPerYear + 1
	out := make([]WeekData, WeeksPerYear)
	for i := range out {
		out[i] = p.Week(first + i)
	}
	return out
}

// Life returns weeks 1..totalWeeks.
func (p *Projector) Life(totalWeeks int) []WeekData {
	if totalWeeks < 0 {
		totalWeeks = 0
	}
	out := make([]WeekData, totalWeeks)
	for i := range out {
		out[i] = p.Week(i + 1)
	}
	return out
}

// ProjectYear assembles the 52 weeks of year yearIndex.
func ProjectYear(
	birth time.Time,
	yearIndex, weeksLived int,
	phases []models.Phase,
	memories []models.Memory,
	milestones []models.Milestone,
) []WeekData {
	return NewProjector(birth, weeksLived, phases, memories, milestones).Year(yearIndex)
}

// ProjectLife assembles weeks 1..totalWeeks.
func ProjectLife(
	birth time.Time,
	weeksLived int,
	phases []models.Phase,
	memories []models.Memory,
	milestones []models.Milestone,
	totalWeeks int,
) []WeekData {
	return NewProjector(birth, weeksLived, phases, memories, milestones).Life(totalWeeks)
}

// YearsLived returns how many grid rows contain lived weeks, at least 1.
func YearsLived(weeksLived int) int {
	years := (weeksLived + WeeksPerYear - 1) / WeeksPerYear
	return max(years, 1)
}
