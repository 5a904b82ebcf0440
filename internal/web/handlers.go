package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/historia/internal/auth"
	"github.com/justestif/historia/internal/logger"
	"github.com/justestif/historia/internal/models"
	"github.com/justestif/historia/internal/store"
	"github.com/justestif/historia/internal/validation"
	"github.com/justestif/historia/internal/weeks"
)

const (
	stateCookieName = "oauth_state"
	failureMessage  = "Some changes could not be saved. Reload the page to see what was stored."
)

type ctxKey struct{}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth       auth.Provider
	sessions   SessionManager
	templates  *Templates
	repo       store.Repository
	workspaces *Workspaces
	lifeWeeks  int
	notice     string
	now        func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg ServerConfig, templates *Templates, workspaces *Workspaces) *Handlers {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	lifeWeeks := cfg.LifeWeeks
	if lifeWeeks <= 0 {
		lifeWeeks = weeks.LifeWeeks100
	}
	return &Handlers{
		auth:       cfg.Auth,
		sessions:   cfg.Sessions,
		templates:  templates,
		repo:       cfg.Repo,
		workspaces: workspaces,
		lifeWeeks:  lifeWeeks,
		notice:     cfg.Notice,
		now:        now,
	}
}

// ============================================================================
// Middleware and helpers
// ============================================================================

// RequireSession redirects anonymous requests to the login page.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := h.sessions.GetFromRequest(r)
		if session == nil {
			if c, err := r.Cookie(sessionCookieName); err == nil {
				h.workspaces.Drop(c.Value)
			}
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, session)))
	})
}

func sessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// workspace loads the caller's workspace. It writes the response and
// returns false when the request cannot continue.
func (h *Handlers) workspace(w http.ResponseWriter, r *http.Request) (*Workspace, bool) {
	session := sessionFrom(r.Context())
	if session == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return nil, false
	}

	ws, err := h.workspaces.Get(r.Context(), session.ID, session.UserID)
	if errors.Is(err, ErrNoProfile) {
		http.Redirect(w, r, "/profile/new", http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		logger.Error("loading workspace", "user", session.UserID, "err", err)
		http.Error(w, "Failed to load your journal", http.StatusInternalServerError)
		return nil, false
	}
	return ws, true
}

func (h *Handlers) pageData(r *http.Request, title string, ws *Workspace) PageData {
	data := PageData{
		Title:       title,
		Notice:      h.notice,
		CurrentPath: r.URL.Path,
	}
	if ws != nil {
		p := ws.Profile()
		data.User = &UserData{ID: p.ID, Name: p.DisplayName()}
		if n := ws.Journal.TakeFailures(); n > 0 {
			data.Flash = &FlashMessage{Type: "error", Message: failureMessage}
		}
	}
	return data
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, page, data); err != nil {
		logger.Error("rendering template", "page", page, "err", err)
	}
}

// ============================================================================
// Pages
// ============================================================================

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)

	data := HomePageData{
		PageData:      h.pageData(r, "Historia", nil),
		Authenticated: session != nil,
	}
	if session != nil {
		data.User = &UserData{ID: session.UserID, Name: session.Email}
	}

	h.render(w, http.StatusOK, "home", data)
}

// Dashboard renders the life grid (GET /dashboard?view=year|life&year=N).
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	h.renderDashboard(w, r, ws, nil, http.StatusOK)
}

func (h *Handlers) renderDashboard(w http.ResponseWriter, r *http.Request, ws *Workspace, form *FormState, status int) {
	profile := ws.Profile()
	snap := ws.Journal.Snapshot()
	lived := weeks.WeeksLived(profile.DateOfBirth, h.now())

	data := DashboardPageData{
		PageData: h.pageData(r, "Your life in weeks", ws),
		Profile:  profile,
		Stats:    weeks.Summarize(lived, snap.Phases, snap.Memories, snap.Milestones),
		Grid:     h.grid(r, profile, snap.Phases, snap.Memories, snap.Milestones),
		Phases:   snap.Phases,
		Colors:   models.PhaseColors,
		Form:     form,
	}
	h.render(w, status, "dashboard", data)
}

// GridPartial renders only the grid block (GET /partials/grid).
func (h *Handlers) GridPartial(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	snap := ws.Journal.Snapshot()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := h.grid(r, ws.Profile(), snap.Phases, snap.Memories, snap.Milestones)
	if err := h.templates.RenderPartial(w, "grid", data); err != nil {
		logger.Error("rendering grid partial", "err", err)
	}
}

// gridQuery reads the view and year index from the query string.
func (h *Handlers) gridQuery(r *http.Request, lived int) (view string, year int) {
	q := r.URL.Query()
	view = "year"
	if q.Get("view") == "life" {
		view = "life"
	}

	lastYear := h.lifeWeeks/weeks.WeeksPerYear - 1
	year = lived / weeks.WeeksPerYear
	if v, err := strconv.Atoi(q.Get("year")); err == nil {
		year = v
	}
	return view, min(max(year, 0), lastYear)
}

func (h *Handlers) grid(r *http.Request, profile models.Profile, phases []models.Phase, memories []models.Memory, milestones []models.Milestone) GridData {
	birth := profile.DateOfBirth
	lived := weeks.WeeksLived(birth, h.now())
	view, year := h.gridQuery(r, lived)

	started := time.Now()
	var projected []weeks.WeekData
	if view == "life" {
		projected = weeks.ProjectLife(birth, lived, phases, memories, milestones, h.lifeWeeks)
	} else {
		projected = weeks.ProjectYear(birth, year, lived, phases, memories, milestones)
	}
	observeGrid(view, started)

	lastYear := h.lifeWeeks/weeks.WeeksPerYear - 1
	g := GridData{
		View:      view,
		Year:      year,
		PrevYear:  year - 1,
		NextYear:  year + 1,
		HasPrev:   year > 0,
		HasNext:   year < lastYear,
		Cells:     make([]CellData, len(projected)),
		LifeWeeks: h.lifeWeeks,
	}
	for i, wd := range projected {
		g.Cells[i] = cellFor(wd, lived+1)
	}
	return g
}

func cellFor(wd weeks.WeekData, current int) CellData {
	label := fmt.Sprintf("Week %d: %s", wd.WeekNumber, models.FormatDate(wd.StartDate))
	switch {
	case len(wd.Milestones) > 0:
		label += " - " + wd.Milestones[0].Title
	case len(wd.Memories) > 0:
		label += " - " + wd.Memories[0].Title
	case wd.Phase != nil:
		label += " - " + wd.Phase.Title
	}
	return CellData{
		Week:     wd.WeekNumber,
		Color:    wd.Color(),
		Category: string(wd.Category()),
		Label:    label,
		Lived:    wd.IsLived,
		Current:  wd.WeekNumber == current,
	}
}

// Week renders one week's details (GET /week/{n}).
func (h *Handlers) Week(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err == nil {
		err = weeks.ValidateWeekNumber(n)
	}
	if err != nil {
		http.Error(w, "Invalid week number", http.StatusBadRequest)
		return
	}

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	h.renderWeek(w, r, ws, n, nil, http.StatusOK)
}

func (h *Handlers) renderWeek(w http.ResponseWriter, r *http.Request, ws *Workspace, n int, form *FormState, status int) {
	profile := ws.Profile()
	snap := ws.Journal.Snapshot()
	lived := weeks.WeeksLived(profile.DateOfBirth, h.now())
	wd := weeks.Assemble(profile.DateOfBirth, n, lived, snap.Phases, snap.Memories, snap.Milestones)

	data := WeekPageData{
		PageData: h.pageData(r, fmt.Sprintf("Week %d", n), ws),
		Week:     wd,
		Category: string(wd.Category()),
		Color:    wd.Color(),
		Age:      (n - 1) / weeks.WeeksPerYear,
		Prev:     n - 1,
		Next:     n + 1,
		Phases:   snap.Phases,
		Colors:   models.PhaseColors,
		Form:     form,
	}
	h.render(w, status, "week", data)
}

// ============================================================================
// Profile
// ============================================================================

// NewProfile renders the profile creation form (GET /profile/new).
func (h *Handlers) NewProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if _, err := h.repo.Profiles().Get(r.Context(), session.UserID); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.renderProfile(w, r, session, nil, http.StatusOK)
}

func (h *Handlers) renderProfile(w http.ResponseWriter, r *http.Request, session *Session, form *FormState, status int) {
	data := ProfilePageData{
		PageData: h.pageData(r, "Create your profile", nil),
		Email:    session.Email,
		Form:     form,
	}
	h.render(w, status, "profile_new", data)
}

// CreateProfile stores the birth date and name (POST /profile).
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	dob, err := formDate(r, "date_of_birth")
	in := models.ProfileInput{
		FullName:    models.StringPtr(strings.TrimSpace(r.PostFormValue("full_name"))),
		DateOfBirth: dob,
	}
	if err == nil {
		err = validation.Profile(in, weeks.Day(h.now()))
	}
	if err != nil {
		form := &FormState{Name: "profile", Error: err.Error(), Values: formValues(r, "full_name", "date_of_birth")}
		h.renderProfile(w, r, session, form, http.StatusUnprocessableEntity)
		return
	}

	now := h.now().UTC()
	profile := &models.Profile{
		ID:          session.UserID,
		Email:       session.Email,
		FullName:    in.FullName,
		DateOfBirth: in.DateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.Profiles().Create(r.Context(), profile); err != nil {
		logger.Error("creating profile", "user", session.UserID, "err", err)
		http.Error(w, "Failed to create profile", http.StatusInternalServerError)
		return
	}

	logger.Info("profile created", "user", session.UserID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// UpdateName changes the display name (POST /profile/name).
func (h *Handlers) UpdateName(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	name := models.StringPtr(strings.TrimSpace(r.PostFormValue("full_name")))
	if name != nil && len([]rune(*name)) > 200 {
		form := &FormState{Name: "profile", Error: "name must be at most 200 characters", Values: formValues(r, "full_name")}
		h.renderDashboard(w, r, ws, form, http.StatusUnprocessableEntity)
		return
	}

	profile := ws.Profile()
	if err := h.repo.Profiles().UpdateName(r.Context(), profile.ID, name); err != nil {
		logger.Error("updating name", "user", profile.ID, "err", err)
		http.Error(w, "Failed to update name", http.StatusInternalServerError)
		return
	}
	ws.SetFullName(name)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ============================================================================
// Journal mutations
// ============================================================================

// mutate parses the form, applies fn to the workspace and finishes the
// request: a redirect on success, the page with the form error on a user
// error.
func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, form string, fields []string, fn func(ws *Workspace) error) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	week := returnWeek(r)
	err := fn(ws)
	switch {
	case err == nil:
		target := "/dashboard"
		if week > 0 {
			target = fmt.Sprintf("/week/%d", week)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	case isUserError(err):
		state := &FormState{Name: form, Error: err.Error(), Values: formValues(r, fields...)}
		if week > 0 {
			h.renderWeek(w, r, ws, week, state, http.StatusUnprocessableEntity)
		} else {
			h.renderDashboard(w, r, ws, state, http.StatusUnprocessableEntity)
		}
	default:
		logger.Error("journal mutation", "form", form, "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

var (
	phaseFields     = []string{"title", "description", "start_date", "end_date", "color"}
	memoryFields    = []string{"title", "content", "memory_date"}
	milestoneFields = []string{"title", "description", "milestone_date"}
)

// CreatePhase handles POST /phases.
func (h *Handlers) CreatePhase(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "phase", phaseFields, func(ws *Workspace) error {
		in, err := parsePhaseInput(r)
		if err != nil {
			return err
		}
		_, err = ws.Journal.AddPhase(in)
		return err
	})
}

// UpdatePhase handles POST /phases/{id}.
func (h *Handlers) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "phase", phaseFields, func(ws *Workspace) error {
		patch, err := parsePhasePatch(r)
		if err != nil {
			return err
		}
		return ws.Journal.EditPhase(id, patch)
	})
}

// DeletePhase handles POST /phases/{id}/delete.
func (h *Handlers) DeletePhase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "phase", nil, func(ws *Workspace) error {
		ws.Journal.DeletePhase(id)
		return nil
	})
}

// CreateMemory handles POST /memories.
func (h *Handlers) CreateMemory(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "memory", memoryFields, func(ws *Workspace) error {
		in, err := parseMemoryInput(r)
		if err != nil {
			return err
		}
		_, err = ws.Journal.AddMemory(in)
		return err
	})
}

// DeleteMemory handles POST /memories/{id}/delete.
func (h *Handlers) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "memory", nil, func(ws *Workspace) error {
		ws.Journal.DeleteMemory(id)
		return nil
	})
}

// CreateMilestone handles POST /milestones.
func (h *Handlers) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "milestone", milestoneFields, func(ws *Workspace) error {
		in, err := parseMilestoneInput(r)
		if err != nil {
			return err
		}
		_, err = ws.Journal.AddMilestone(in)
		return err
	})
}

// DeleteMilestone handles POST /milestones/{id}/delete.
func (h *Handlers) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "milestone", nil, func(ws *Workspace) error {
		return ws.Journal.DeleteMilestone(id)
	})
}

// ============================================================================
// Authentication
// ============================================================================

// Login starts sign-in (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback completes sign-in (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	token, id, err := h.auth.Exchange(r.Context(), r)
	if errors.Is(err, auth.ErrProviderDenied) {
		http.Error(w, "Sign-in was cancelled", http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Error("sign-in exchange", "err", err)
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Create(r.Context(), token, id)
	if err != nil {
		logger.Error("creating session", "user", id.UserID, "err", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.sessions.SetCookie(w, session)

	logger.Info("signed in", "user", id.UserID)
	http.Redirect(w, r, "/dashboard", http.StatusTemporaryRedirect)
}

// Logout clears the session and redirects to home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session != nil {
		h.workspaces.Drop(session.ID)
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
