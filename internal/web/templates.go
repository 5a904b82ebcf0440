package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/weeks"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	partials  map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		partials:  make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderPartial renders a partial template (without base layout) with the given data.
func (t *Templates) RenderPartial(w io.Writer, partial string, data any) error {
	tmpl, ok := t.partials[partial]
	if !ok {
		return fmt.Errorf("partial %q not found", partial)
	}
	return tmpl.Execute(w, data)
}

// load parses all templates from the filesystem.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	// Common files to include with every page
	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := trimExt(page)
		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	// Partials are also standalone templates for fragment requests. Each
	// partial file defines a template named after itself.
	for _, partial := range partials {
		name := trimExt(partial)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, partials...)
		if err != nil {
			return fmt.Errorf("parsing partial %s: %w", name, err)
		}
		t.partials[name] = tmpl
	}

	return nil
}

func trimExt(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// formatDate formats a time as "Jan 2, 2006"
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},

		// formatDateRange formats a date range as "Jan 2 - Feb 3, 2006"
		"formatDateRange": func(start, end time.Time) string {
			if start.Year() == end.Year() && start.Month() == end.Month() {
				return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("2, 2006"))
			}
			if start.Year() == end.Year() {
				return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
			}
			return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
		},

		// isoDate formats a time for <input type="date">.
		"isoDate": models.FormatDate,

		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},

		"percent": func(f float64) string {
			return fmt.Sprintf("%.1f%%", f)
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *UserData
	Flash       *FlashMessage
	Notice      string
	CurrentPath string
}

// UserData contains authenticated user information.
type UserData struct {
	ID   string
	Name string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// FormState carries a rejected form back to the page.
type FormState struct {
	Name   string // which form failed: "phase", "memory", "milestone", "profile"
	Error  string
	Values map[string]string
}

// Is reports whether the form named name failed. Safe on nil.
func (f *FormState) Is(name string) bool {
	return f != nil && f.Name == name
}

// Value returns the submitted value of field, if the form named name failed.
func (f *FormState) Value(name, field string) string {
	if f == nil || f.Name != name {
		return ""
	}
	return f.Values[field]
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	Authenticated bool
}

// ProfilePageData contains data for the profile creation page.
type ProfilePageData struct {
	PageData
	Email string
	Form  *FormState
}

// DashboardPageData contains data for the dashboard template.
type DashboardPageData struct {
	PageData
	Profile models.Profile
	Stats   weeks.Stats
	Grid    GridData
	Phases  []models.Phase
	Colors  []models.PaletteColor
	Form    *FormState
}

// GridData is a rendered block of week cells.
type GridData struct {
	View      string // "year" or "life"
	Year      int    // 0-based year index for the year view
	PrevYear  int
	NextYear  int
	HasPrev   bool
	HasNext   bool
	Cells     []CellData
	LifeWeeks int
}

// CellData is one week square.
type CellData struct {
	Week     int
	Color    string
	Category string
	Label    string
	Lived    bool
	Current  bool
}

// WeekPageData contains data for the week detail page.
type WeekPageData struct {
	PageData
	Week     weeks.WeekData
	Category string
	Color    string
	Age      int
	Prev     int
	Next     int
	Phases   []models.Phase
	Colors   []models.PaletteColor
	Form     *FormState
}
