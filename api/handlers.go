/*
handlers.go - HTTP API handlers for the scheduling board

PURPOSE:
  Exposes the board and its interaction controller via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the domain.

ENDPOINTS:
  Calendar:
    GET    /api/calendar?from=YYYY-MM-DD&days=N  Positioned, filtered week

  Library & composer:
    GET    /api/library                 Atoms and templates
    POST   /api/atoms/{kind}            Add an atom to a catalog
    POST   /api/templates               Compose a template from atom ids
    GET    /api/templates/{id}          Template detail
    PUT    /api/templates/{id}          Recompose (refreshes pool entries)
    DELETE /api/templates/{id}          Remove template and its pool entries

  Pool:
    GET    /api/pool                    Pool entries in insertion order
    POST   /api/pool/templates/{id}     Stage a template
    POST   /api/pool/client-groups/{id} Stage a bare client group
    DELETE /api/pool/{id}               Unstage

  Encounters:
    GET    /api/encounters/{id}                 Detail + effective roster
    DELETE /api/encounters/{id}?scope=          instance | family
    POST   /api/encounters/{id}/cancel          Sticky cancel
    POST   /api/encounters/{id}/reinstate       Back to scheduled
    POST   /api/encounters/{id}/duplicate       Copy into the family
    POST   /api/encounters/{id}/repeat          RRULE expansion
    PUT    /api/encounters/{id}/overrides       Replace overrides
    PUT    /api/encounters/{id}/time            Set start and end

  Interaction hooks:
    POST   /api/drag/{start,over,leave,cancel}
    POST   /api/drop
    POST   /api/resize/{start,move,end}
    GET    /api/merge, POST /api/merge/choice
    GET    /api/interaction             Active sessions

  Preferences:
    GET|PUT /api/filters/staff
    PUT     /api/preferences/time-format

  Misc:
    GET    /api/snapshot, GET /api/status, /api/scenarios/*

ERROR HANDLING:
  Errors are returned as JSON {error, details} with:
  - 400: Validation errors, invalid input, malformed payloads
  - 404: Unknown template, encounter, atom or pool entry
  - 409: Duplicate atom, competing interaction, no active session
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/factory"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/interaction"
	"github.com/warp/bentobox/layout"
)

// MaxCalendarDays bounds one calendar read.
const MaxCalendarDays = 42

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Options configures a Handler. Zero values fall back to defaults.
type Options struct {
	Logger    *slog.Logger
	Metrics   *Metrics
	Ticker    *StatusTicker
	Clock     generic.Clock
	Location  *time.Location
	WeekStart time.Weekday
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	board     *bento.Board
	seeds     *factory.SeedFactory
	metrics   *Metrics
	ticker    *StatusTicker
	logger    *slog.Logger
	clock     generic.Clock
	location  *time.Location
	weekStart time.Weekday
	scenarios []Scenario

	// mu guards the controller swap on scenario load
	mu              sync.RWMutex
	ctl             *interaction.Controller
	currentScenario string
}

// NewHandler creates a handler over board.
func NewHandler(board *bento.Board, opts Options) (*Handler, error) {
	scenarios, err := LoadScenarios()
	if err != nil {
		return nil, fmt.Errorf("loading scenarios: %w", err)
	}
	h := &Handler{
		board:     board,
		seeds:     factory.NewSeedFactory(),
		metrics:   opts.Metrics,
		ticker:    opts.Ticker,
		logger:    opts.Logger,
		clock:     opts.Clock,
		location:  opts.Location,
		weekStart: opts.WeekStart,
		scenarios: scenarios,
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.clock == nil {
		h.clock = generic.SystemClock
	}
	if h.location == nil {
		h.location = time.UTC
	}
	h.ctl = h.newController()
	return h, nil
}

func (h *Handler) newController() *interaction.Controller {
	return interaction.NewController(h.board,
		interaction.WithLogger(h.logger),
		interaction.WithObserver(h.metrics),
		interaction.WithLocation(h.location),
	)
}

func (h *Handler) controller() *interaction.Controller {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ctl
}

// =============================================================================
// CALENDAR
// =============================================================================

// GetCalendar returns the visible encounters grouped by day and positioned.
// GET /api/calendar?from=2025-03-10&days=7
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	from := generic.WeekOf(now.In(h.location), h.weekStart).Start
	if s := r.URL.Query().Get("from"); s != "" {
		d, err := time.ParseInLocation("2006-01-02", s, h.location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		from = d
	}
	days := 7
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxCalendarDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", MaxCalendarDays), err)
			return
		}
		days = n
	}

	period := generic.DaysFrom(from, days)
	visible := h.board.Visible(period)
	for i := range visible {
		visible[i].Start = visible[i].Start.In(h.location)
		visible[i].End = visible[i].End.In(h.location)
	}
	format := h.board.TimeFormat()

	dto := CalendarDTO{
		From:       from.Format("2006-01-02"),
		Days:       days,
		Now:        now,
		TimeFormat: format,
		HourHeight: layout.HourHeight,
		Columns:    []DayColumnDTO{},
	}
	for _, col := range layout.Columns(period, visible) {
		c := DayColumnDTO{
			Date:   col.Day.Format("2006-01-02"),
			Label:  col.Day.Format("Mon Jan 2"),
			Blocks: make([]CalendarBlockDTO, 0, len(col.Blocks)),
		}
		for _, blk := range col.Blocks {
			c.Blocks = append(c.Blocks, toCalendarBlock(blk, h.board.TemplateFor(blk.Item), now, format))
		}
		dto.Columns = append(dto.Columns, c)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// LIBRARY & COMPOSER
// =============================================================================

// GetLibrary returns every catalog and template.
// GET /api/library
func (h *Handler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Snapshot().Library)
}

// AddAtom appends an atom to the catalog named by {kind}.
// POST /api/atoms/{kind}
func (h *Handler) AddAtom(w http.ResponseWriter, r *http.Request) {
	var atom bento.Atom
	if err := json.NewDecoder(r.Body).Decode(&atom); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	added, err := h.board.AddAtom(r.Context(), atom, bento.AtomKind(chi.URLParam(r, "kind")))
	if err != nil {
		writeDomainError(w, "Failed to add atom", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// CreateTemplate composes a template from library ids.
// POST /api/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	d, err := h.seeds.Draft(h.board, req)
	if err != nil {
		writeDomainError(w, "Failed to resolve template parts", err)
		return
	}
	t, err := h.board.ComposeTemplate(r.Context(), d)
	if err != nil {
		writeDomainError(w, err.Error(), err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetTemplate returns one template.
// GET /api/templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, ok := h.board.Template(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTemplate recomposes a template in place.
// PUT /api/templates/{id}
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := chi.URLParam(r, "id")
	req.ID = id
	d, err := h.seeds.Draft(h.board, req)
	if err != nil {
		writeDomainError(w, "Failed to resolve template parts", err)
		return
	}
	t, err := h.board.UpdateTemplate(r.Context(), id, d)
	if err != nil {
		writeDomainError(w, err.Error(), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PatchTemplate changes a template's name, color or category, keeping its
// roster, activity, location and duration.
// PATCH /api/templates/{id}
func (h *Handler) PatchTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplatePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := chi.URLParam(r, "id")
	current, ok := h.board.Template(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Template not found", nil)
		return
	}
	d := bento.DraftFrom(current)
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Color != nil {
		d.Color = *req.Color
	}
	if req.Category != nil {
		d.Category = *req.Category
	}
	t, err := h.board.UpdateTemplate(r.Context(), id, d)
	if err != nil {
		writeDomainError(w, err.Error(), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate removes a template and its pool entries.
// DELETE /api/templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// POOL
// =============================================================================

// ListPool returns pool entries.
// GET /api/pool
func (h *Handler) ListPool(w http.ResponseWriter, r *http.Request) {
	entries := h.board.Pool()
	if entries == nil {
		entries = []bento.PoolEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddTemplateToPool stages a template.
// POST /api/pool/templates/{id}
func (h *Handler) AddTemplateToPool(w http.ResponseWriter, r *http.Request) {
	p, err := h.board.AddToPool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to add to pool", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// AddClientGroupToPool stages a bare client group.
// POST /api/pool/client-groups/{id}
func (h *Handler) AddClientGroupToPool(w http.ResponseWriter, r *http.Request) {
	p, err := h.board.AddClientGroupToPool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to add to pool", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// RemoveFromPool unstages an entry; what it references stays.
// DELETE /api/pool/{id}
func (h *Handler) RemoveFromPool(w http.ResponseWriter, r *http.Request) {
	if err := h.board.RemoveFromPool(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to remove from pool", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ENCOUNTERS
// =============================================================================

// GetEncounter returns an encounter with its effective roster.
// GET /api/encounters/{id}
func (h *Handler) GetEncounter(w http.ResponseWriter, r *http.Request) {
	e, ok := h.board.Encounter(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Encounter not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.encounterDTO(e))
}

func (h *Handler) encounterDTO(e bento.ScheduledEncounter) EncounterDTO {
	tpl := h.board.TemplateFor(e)
	status := bento.DeriveStatus(e, h.clock())
	dto := EncounterDTO{
		Encounter:     e,
		DerivedStatus: status,
		StatusColor:   bento.StatusColor(status),
		Staff:         bento.EffectiveStaff(e, tpl),
		Clients:       bento.EffectiveClients(e, tpl),
		Activity:      bento.EffectiveActivity(e, tpl),
		Location:      bento.EffectiveLocation(e, tpl),
		Capacity:      bento.CapacityFor(e, tpl),
		Family:        []string{},
	}
	if dto.Staff == nil {
		dto.Staff = []bento.Atom{}
	}
	if dto.Clients == nil {
		dto.Clients = []bento.Atom{}
	}
	if fam, err := h.board.Family(e.ID); err == nil {
		for _, f := range fam {
			dto.Family = append(dto.Family, f.ID)
		}
	}
	return dto
}

// DeleteEncounter removes one instance or its whole family.
// DELETE /api/encounters/{id}?scope=instance|family
func (h *Handler) DeleteEncounter(w http.ResponseWriter, r *http.Request) {
	scope := bento.DeleteScope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = bento.DeleteInstance
	}
	if scope != bento.DeleteInstance && scope != bento.DeleteFamily {
		writeError(w, http.StatusBadRequest, "scope must be instance or family", nil)
		return
	}
	removed, err := h.board.Delete(r.Context(), chi.URLParam(r, "id"), scope)
	if err != nil {
		writeDomainError(w, "Failed to delete encounter", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Removed: removed})
}

// CancelEncounter marks an encounter cancelled.
// POST /api/encounters/{id}/cancel
func (h *Handler) CancelEncounter(w http.ResponseWriter, r *http.Request) {
	e, err := h.board.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to cancel encounter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.encounterDTO(e))
}

// ReinstateEncounter clears a cancellation.
// POST /api/encounters/{id}/reinstate
func (h *Handler) ReinstateEncounter(w http.ResponseWriter, r *http.Request) {
	e, err := h.board.Reinstate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to reinstate encounter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.encounterDTO(e))
}

// DuplicateEncounter copies an encounter into its family.
// POST /api/encounters/{id}/duplicate
func (h *Handler) DuplicateEncounter(w http.ResponseWriter, r *http.Request) {
	var req DuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Start.IsZero() {
		writeError(w, http.StatusBadRequest, "start is required", nil)
		return
	}
	e, err := h.board.Duplicate(r.Context(), chi.URLParam(r, "id"), req.Start)
	if err != nil {
		writeDomainError(w, "Failed to duplicate encounter", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.encounterDTO(e))
}

// RepeatEncounter expands an RRULE into duplicates.
// POST /api/encounters/{id}/repeat
func (h *Handler) RepeatEncounter(w http.ResponseWriter, r *http.Request) {
	var req RepeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	copies, err := h.board.Repeat(r.Context(), chi.URLParam(r, "id"), req.Rule)
	if err != nil {
		writeDomainError(w, "Failed to repeat encounter", err)
		return
	}
	if copies == nil {
		copies = []bento.ScheduledEncounter{}
	}
	writeJSON(w, http.StatusCreated, copies)
}

// SetOverrides replaces an encounter's overrides.
// PUT /api/encounters/{id}/overrides
func (h *Handler) SetOverrides(w http.ResponseWriter, r *http.Request) {
	var o bento.Overrides
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	e, err := h.board.SetOverrides(r.Context(), chi.URLParam(r, "id"), o)
	if err != nil {
		writeDomainError(w, "Failed to set overrides", err)
		return
	}
	writeJSON(w, http.StatusOK, h.encounterDTO(e))
}

// RetimeEncounter sets both bounds.
// PUT /api/encounters/{id}/time
func (h *Handler) RetimeEncounter(w http.ResponseWriter, r *http.Request) {
	var req RetimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	e, err := h.board.Retime(r.Context(), chi.URLParam(r, "id"), req.Start, req.End)
	if err != nil {
		writeDomainError(w, "Failed to change encounter time", err)
		return
	}
	writeJSON(w, http.StatusOK, h.encounterDTO(e))
}

// =============================================================================
// INTERACTION HOOKS
// =============================================================================

// DragStart opens a drag session for a serialized payload.
// POST /api/drag/start
func (h *Handler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req DragStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := interaction.DecodePayload(req.Payload)
	if err != nil {
		writeDomainError(w, "Invalid drag payload", err)
		return
	}
	if err := h.controller().DragStart(p); err != nil {
		writeDomainError(w, "Cannot start drag", err)
		return
	}
	writeJSON(w, http.StatusOK, h.controller().State())
}

// DragOver updates the hover preview.
// POST /api/drag/over
func (h *Handler) DragOver(w http.ResponseWriter, r *http.Request) {
	var req DragOverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	hover, err := h.controller().DragOver(req.Cell, req.PointerY, req.CellHeight)
	if err != nil {
		writeDomainError(w, "No drag in progress", err)
		return
	}
	writeJSON(w, http.StatusOK, hover)
}

// DragLeave clears the hover preview.
// POST /api/drag/leave
func (h *Handler) DragLeave(w http.ResponseWriter, r *http.Request) {
	h.controller().DragLeave()
	w.WriteHeader(http.StatusNoContent)
}

// DragCancel ends the drag without effect.
// POST /api/drag/cancel
func (h *Handler) DragCancel(w http.ResponseWriter, r *http.Request) {
	h.controller().DragCancel()
	w.WriteHeader(http.StatusNoContent)
}

// Drop applies a release. Malformed payloads come back as "ignored".
// POST /api/drop
func (h *Handler) Drop(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	res, err := h.controller().Drop(r.Context(), req.Payload, req.Target)
	if err != nil {
		writeDomainError(w, "Drop failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResizeStart opens a resize session.
// POST /api/resize/start
func (h *Handler) ResizeStart(w http.ResponseWriter, r *http.Request) {
	var req ResizeStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	s, err := h.controller().ResizeStart(req.EncounterID, req.Edge, req.AnchorY)
	if err != nil {
		writeDomainError(w, "Cannot start resize", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ResizeMove applies a pointer move.
// POST /api/resize/move
func (h *Handler) ResizeMove(w http.ResponseWriter, r *http.Request) {
	var req ResizeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	step, err := h.controller().ResizeMove(r.Context(), req.CurrentY)
	if err != nil {
		writeDomainError(w, "Resize failed", err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

// ResizeEnd closes the resize session.
// POST /api/resize/end
func (h *Handler) ResizeEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.controller().ResizeEnd(); err != nil {
		writeDomainError(w, "No resize in progress", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPendingMerge returns the merge dialog view.
// GET /api/merge
func (h *Handler) GetPendingMerge(w http.ResponseWriter, r *http.Request) {
	m, ok := h.controller().PendingMerge()
	if !ok {
		writeError(w, http.StatusNotFound, "No merge pending", nil)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ChooseMerge resolves the pending merge.
// POST /api/merge/choice
func (h *Handler) ChooseMerge(w http.ResponseWriter, r *http.Request) {
	var req MergeChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	e, err := h.controller().MergeChoice(r.Context(), req.Choice)
	if err != nil {
		writeDomainError(w, "Merge failed", err)
		return
	}
	writeJSON(w, http.StatusOK, h.encounterDTO(e))
}

// GetInteraction reports the active sessions.
// GET /api/interaction
func (h *Handler) GetInteraction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller().State())
}

// =============================================================================
// PREFERENCES
// =============================================================================

// GetStaffFilter returns the selected staff ids.
// GET /api/filters/staff
func (h *Handler) GetStaffFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StaffFilterRequest{StaffIDs: h.board.StaffFilter()})
}

// SetStaffFilter replaces the selected staff ids.
// PUT /api/filters/staff
func (h *Handler) SetStaffFilter(w http.ResponseWriter, r *http.Request) {
	var req StaffFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.board.SetStaffFilter(r.Context(), req.StaffIDs)
	writeJSON(w, http.StatusOK, StaffFilterRequest{StaffIDs: h.board.StaffFilter()})
}

// SetTimeFormat switches 12h/24h labels.
// PUT /api/preferences/time-format
func (h *Handler) SetTimeFormat(w http.ResponseWriter, r *http.Request) {
	var req TimeFormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.board.SetTimeFormat(r.Context(), req.TimeFormat); err != nil {
		writeDomainError(w, "Invalid time format", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// MISC
// =============================================================================

// GetSnapshot returns the persisted form of the board.
// GET /api/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// GetStatus returns the last ticker report, or a live one before the first tick.
// GET /api/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h.ticker != nil {
		if rep, ok := h.ticker.Latest(); ok {
			writeJSON(w, http.StatusOK, rep)
			return
		}
	}
	now := h.clock()
	writeJSON(w, http.StatusOK, TickReport{At: now, Summary: bento.StatusSummary(h.board.Encounters(), now)})
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's sentinel.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case generic.IsNotFound(err):
		status = http.StatusNotFound
	case generic.IsConflict(err):
		status = http.StatusConflict
	case generic.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeError(w, status, message, err)
}
