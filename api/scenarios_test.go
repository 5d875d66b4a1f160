package api_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/api"
	"github.com/warp/bentobox/factory"
	"github.com/warp/bentobox/generic"
)

func TestLoadScenarios_Embedded(t *testing.T) {
	scenarios, err := api.LoadScenarios()
	require.NoError(t, err)

	ids := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Name, s.ID)
	}
	assert.Equal(t, []string{"blank", "clinic-week", "group-sessions"}, ids)
}

func TestLoadScenario_ClinicWeek(t *testing.T) {
	// GIVEN: A server with some manual edits
	// WHEN: The clinic-week scenario is loaded
	// THEN: The board is replaced by the scenario for the current week

	s := newServer(t)
	s.seed()
	s.drop(`{"type":"pool-template","templateId":"tpl-pt"}`, 9, 0, "")

	rec := s.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "clinic-week"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[api.LoadScenarioResponse](t, rec)
	assert.Equal(t, "loaded", res.Status)
	assert.Equal(t, factory.Summary{Atoms: 13, Templates: 3, Pool: 3, Encounters: 6}, res.Summary)

	cal := decode[api.CalendarDTO](t, s.do(http.MethodGet, "/api/calendar", nil))
	assert.Equal(t, "2025-03-10", cal.From)
	blocks := 0
	for _, col := range cal.Columns {
		blocks += len(col.Blocks)
	}
	assert.Equal(t, 6, blocks)

	current := decode[api.Scenario](t, s.do(http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "clinic-week", current.ID)
	_, ok := s.board.Template("tpl-pt")
	assert.False(t, ok, "previous board discarded")
}

func TestLoadScenario_TimeFormatAndBlank(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "group-sessions"}).Code)
	cal := decode[api.CalendarDTO](t, s.do(http.MethodGet, "/api/calendar", nil))
	assert.Equal(t, generic.TimeFormat24h, cal.TimeFormat)

	rec := s.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "blank"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[api.LoadScenarioResponse](t, rec).Summary.Encounters)
	assert.Empty(t, s.board.Encounters())
}

func TestLoadScenario_Unknown(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

