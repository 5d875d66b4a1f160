/*
scenarios.go - Embedded demo boards

PURPOSE:
  Provides pre-built seed documents that populate the board with a
  realistic library, pool and calendar week for demos and manual testing.

AVAILABLE SCENARIOS:
  clinic-week:     Individual and paired therapy across a week, one cancelled
  group-sessions:  Client groups in the pool; overlapping members for merges
  blank:           A small library and an empty calendar

HOW SCENARIOS WORK:
 1. Reset the board (library, pool, calendar, preferences)
 2. Drop any in-flight drag, resize or merge
 3. Apply the seed with the factory; day offsets count from the
    current week's first day

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "clinic-week"}

ADDING NEW SCENARIOS:
  Drop a YAML seed into api/scenarios/. The file name is the id.

NOTE:
  Loading a scenario replaces the persisted board.

SEE ALSO:
  - factory/seed.go: Seed document schema
*/
package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/warp/bentobox/factory"
	"github.com/warp/bentobox/generic"
)

//go:embed scenarios/*.yaml
var scenarioFS embed.FS

// Scenario is one embedded seed.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	seed *factory.SeedJSON
}

// LoadScenarios parses every embedded seed, ordered by id.
func LoadScenarios() ([]Scenario, error) {
	entries, err := fs.ReadDir(scenarioFS, "scenarios")
	if err != nil {
		return nil, err
	}
	var out []Scenario
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := scenarioFS.ReadFile(path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, err
		}
		seed, err := factory.ParseSeed(data)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", e.Name(), err)
		}
		out = append(out, Scenario{
			ID:          strings.TrimSuffix(e.Name(), ".yaml"),
			Name:        seed.Name,
			Description: seed.Description,
			seed:        seed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (h *Handler) scenario(id string) (Scenario, bool) {
	for _, s := range h.scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := h.scenarios
	if out == nil {
		out = []Scenario{}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the loaded scenario, or null.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	s, ok := h.scenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// LoadScenario resets the board and applies a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	s, ok := h.scenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("%w: scenario %q", generic.ErrNotFound, req.ScenarioID))
		return
	}

	sum, err := h.loadScenario(r.Context(), s)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, LoadScenarioResponse{Status: "loaded", Scenario: s.ID, Summary: sum})
}

func (h *Handler) loadScenario(ctx context.Context, s Scenario) (factory.Summary, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.board.Reset(ctx)
	h.ctl = h.newController()
	h.currentScenario = ""

	anchor := generic.WeekOf(h.clock().In(h.location), h.weekStart).Start
	sum, err := h.seeds.Apply(ctx, h.board, s.seed, anchor)
	if err != nil {
		return sum, err
	}
	h.currentScenario = s.ID
	h.logger.Info("scenario loaded", "scenario", s.ID,
		"atoms", sum.Atoms, "templates", sum.Templates, "pool", sum.Pool, "encounters", sum.Encounters)
	return sum, nil
}
