package web

import (
	"encoding/json"
	"net/http"

	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/weeks"
)

// gridResponse is the JSON body of GET /api/grid.
type gridResponse struct {
	View       string      `json:"view"`
	Year       int         `json:"year,omitempty"`
	BirthDate  string      `json:"birthDate"`
	WeeksLived int         `json:"weeksLived"`
	Stats      weeks.Stats `json:"stats"`
	Weeks      []weekJSON  `json:"weeks"`
}

type weekJSON struct {
	WeekNumber int    `json:"weekNumber"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	IsLived    bool   `json:"isLived"`
	Category   string `json:"category"`
	Color      string `json:"color"`
	Current    bool   `json:"current,omitempty"`
	Label      string `json:"label"`
}

// APIGrid returns the grid as JSON for client widgets
// (GET /api/grid?view=year|life&year=N).
func (h *Handlers) APIGrid(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	profile := ws.Profile()
	snap := ws.Journal.Snapshot()
	lived := weeks.WeeksLived(profile.DateOfBirth, h.now())
	g := h.grid(r, profile, snap.Phases, snap.Memories, snap.Milestones)

	resp := gridResponse{
		View:       g.View,
		BirthDate:  models.FormatDate(profile.DateOfBirth),
		WeeksLived: lived,
		Stats:      weeks.Summarize(lived, snap.Phases, snap.Memories, snap.Milestones),
		Weeks:      make([]weekJSON, len(g.Cells)),
	}
	if g.View == "year" {
		resp.Year = g.Year
	}
	for i, c := range g.Cells {
		start, end := weeks.WeekRange(profile.DateOfBirth, c.Week)
		resp.Weeks[i] = weekJSON{
			WeekNumber: c.Week,
			StartDate:  models.FormatDate(start),
			EndDate:    models.FormatDate(end),
			IsLived:    c.Lived,
			Category:   c.Category,
			Color:      c.Color,
			Current:    c.Current,
			Label:      c.Label,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("encoding grid", "err", err)
	}
}
