package weeks

import (
	"github.com/justestif/historia/internal/models"
)

// Stats summarizes a journal for the dashboard header.
type Stats struct {
	Age          int     `json:"age"`
	WeeksLived   int     `json:"weeksLived"`
	PercentLived float64 `json:"percentLived"` // of an 80-year life, capped at 100
	Phases       int     `json:"phases"`
	Memories     int     `json:"memories"`
	Milestones   int     `json:"milestones"` // user-authored only
}

// Summarize computes dashboard statistics. Birthday milestones are not
// counted because the system creates them.
func Summarize(weeksLived int, phases []models.Phase, memories []models.Memory, milestones []models.Milestone) Stats {
	s := Stats{
		Age:        weeksLived / WeeksPerYear,
		WeeksLived: weeksLived,
		Phases:     len(phases),
		Memories:   len(memories),
	}
	if weeksLived > 0 {
		s.PercentLived = min(float64(weeksLived)/float64(LifeWeeks80)*100, 100)
	}
	for _, m := range milestones {
		if !m.IsBirthday {
			s.Milestones++
		}
	}
	return s
}
