package api_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/api"
	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
)

func TestStatusTicker_InvalidSpec(t *testing.T) {
	_, err := api.NewStatusTicker(bento.NewBoard(), "every so often", nil, nil)
	assert.Error(t, err)
}

func TestStatusTicker_Tick(t *testing.T) {
	// GIVEN: Two encounters, one running at the tick instant
	// WHEN: The ticker ticks
	// THEN: The summary and the encounters gauge reflect that instant

	s := newServer(t)
	s.seed()
	s.drop(`{"type":"pool-template","templateId":"tpl-pt"}`, 7, 0.5, "")
	s.drop(`{"type":"pool-template","templateId":"tpl-pt"}`, 12, 0, "")

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	ticker, err := api.NewStatusTicker(s.board, "@every 1h", s.metrics, quiet)
	require.NoError(t, err)

	_, ok := ticker.Latest()
	assert.False(t, ok, "no tick yet")

	at := monday.Add(12*time.Hour + 30*time.Minute)
	rep := ticker.WithClock(generic.FixedClock(at)).Tick()
	assert.Equal(t, at, rep.At)
	assert.Equal(t, map[bento.Status]int{
		bento.StatusScheduled:  0,
		bento.StatusInProgress: 1,
		bento.StatusCompleted:  1,
		bento.StatusCancelled:  0,
	}, rep.Summary)

	latest, ok := ticker.Latest()
	require.True(t, ok)
	assert.Equal(t, rep, latest)

	expected := `
# HELP bentobox_encounters Scheduled encounters by derived status at the last tick.
# TYPE bentobox_encounters gauge
bentobox_encounters{status="cancelled"} 0
bentobox_encounters{status="completed"} 1
bentobox_encounters{status="in-progress"} 1
bentobox_encounters{status="scheduled"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(s.metrics.Registry(), strings.NewReader(expected), "bentobox_encounters"))
}

func TestStatusTicker_StartStop(t *testing.T) {
	s := newServer(t)
	ticker, err := api.NewStatusTicker(s.board, "@every 1h", nil, nil)
	require.NoError(t, err)
	ticker.WithClock(generic.FixedClock(now))

	ticker.Start()
	latest, ok := ticker.Latest()
	require.True(t, ok, "Start ticks immediately")
	assert.Equal(t, now, latest.At)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ticker.Stop(ctx)
}
