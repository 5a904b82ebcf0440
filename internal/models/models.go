// Package models defines the journal entities shared by storage, the week
// engine and the web layer.
package models

import (
	"time"
)

// DateFormat is the wire format of calendar dates (no time component).
const DateFormat = "2006-01-02"

// Profile is a user's account profile. Only FullName may change after creation.
type Profile struct {
	ID          string
	Email       string
	FullName    *string // nullable
	DateOfBirth time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName returns the full name, falling back to the email address.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// Phase is a user-defined life chapter spanning an inclusive date range.
type Phase struct {
	ID          string
	UserID      string
	Title       string
	Description *string // nullable
	StartDate   time.Time
	EndDate     time.Time
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Memory is a point-in-time note.
type Memory struct {
	ID         string
	UserID     string
	Title      string
	Content    *string // nullable
	MemoryDate time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Milestone is a significant event. Birthday milestones are generated by the
// system and are never deleted by the user.
type Milestone struct {
	ID            string
	UserID        string
	Title         string
	Description   *string // nullable
	MilestoneDate time.Time
	IsBirthday    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfileInput holds the fields of a new profile.
type ProfileInput struct {
	FullName    *string   `validate:"omitempty,max=200"`
	DateOfBirth time.Time `validate:"required"`
}

// PhaseInput holds the user-supplied fields of a new phase.
type PhaseInput struct {
	Title       string    `validate:"required,max=200"`
	Description *string   `validate:"omitempty,max=2000"`
	StartDate   time.Time `validate:"required"`
	EndDate     time.Time `validate:"required"`
	Color       string    `validate:"required,hexcolor,palette"`
}

// PhasePatch holds optional phase field updates. Nil fields are left unchanged.
type PhasePatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Color       *string
}

// MemoryInput holds the user-supplied fields of a new memory.
type MemoryInput struct {
	Title      string    `validate:"required,max=200"`
	Content    *string   `validate:"omitempty,max=10000"`
	MemoryDate time.Time `validate:"required"`
}

// MemoryPatch holds optional memory field updates.
type MemoryPatch struct {
	Title      *string
	Content    *string
	MemoryDate *time.Time
}

// MilestoneInput holds the user-supplied fields of a new milestone.
type MilestoneInput struct {
	Title         string    `validate:"required,max=200"`
	Description   *string   `validate:"omitempty,max=2000"`
	MilestoneDate time.Time `validate:"required"`
	IsBirthday    bool
}

// MilestonePatch holds optional milestone field updates.
type MilestonePatch struct {
	Title         *string
	Description   *string
	MilestoneDate *time.Time
}

// PaletteColor is a named phase color.
type PaletteColor struct {
	Name  string
	Value string
}

// PhaseColors is the fixed palette phases may use.
var PhaseColors = []PaletteColor{
	{Name: "Slate", Value: "#64748B"},
	{Name: "Red", Value: "#EF4444"},
	{Name: "Orange", Value: "#F97316"},
	{Name: "Amber", Value: "#F59E0B"},
	{Name: "Yellow", Value: "#EAB308"},
	{Name: "Lime", Value: "#84CC16"},
	{Name: "Green", Value: "#22C55E"},
	{Name: "Teal", Value: "#14B8A6"},
	{Name: "Cyan", Value: "#06B6D4"},
	{Name: "Blue", Value: "#3B82F6"},
	{Name: "Indigo", Value: "#6366F1"},
	{Name: "Purple", Value: "#A855F7"},
	{Name: "Pink", Value: "#EC4899"},
	{Name: "Rose", Value: "#F43F5E"},
}

// IsPaletteColor reports whether value is one of PhaseColors.
func IsPaletteColor(value string) bool {
	for _, c := range PhaseColors {
		if c.Value == value {
			return true
		}
	}
	return false
}

// FormatDate formats a calendar date in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate parses a wire-format date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// StringPtr returns nil for an empty string and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
