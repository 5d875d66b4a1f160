/*
scheduler.go - Derived-status ticker

PURPOSE:
  Derived status (scheduled / in-progress / completed) depends on the
  current instant, so the calendar has to be recomputed as time passes even
  when nothing is edited. The ticker records the instant of each tick and
  the status summary at that instant, and publishes both as metrics.

DESIGN:
  - robfig/cron drives the schedule (default "@every 60s")
  - Ticks only read the board; stored statuses are never rewritten
  - The latest report backs GET /api/status

USAGE:
  ticker, err := NewStatusTicker(board, cfg.Status.Tick, metrics, logger)
  ticker.Start()
  defer ticker.Stop(ctx)

SEE ALSO:
  - bento/status.go: DeriveStatus, StatusSummary
  - metrics.go: encounters gauge
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
)

// TickReport is the outcome of one recomputation.
type TickReport struct {
	At      time.Time            `json:"at"`
	Summary map[bento.Status]int `json:"summary"`
}

// StatusTicker periodically recomputes derived statuses.
type StatusTicker struct {
	board   *bento.Board
	metrics *Metrics
	logger  *slog.Logger
	clock   generic.Clock

	cron *cron.Cron
	spec string

	mu   sync.RWMutex
	last TickReport
}

// NewStatusTicker validates spec and prepares the schedule. metrics may be nil.
func NewStatusTicker(board *bento.Board, spec string, metrics *Metrics, logger *slog.Logger) (*StatusTicker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &StatusTicker{
		board:   board,
		metrics: metrics,
		logger:  logger,
		clock:   generic.SystemClock,
		cron:    cron.New(),
		spec:    spec,
	}
	if _, err := t.cron.AddFunc(spec, func() { t.Tick() }); err != nil {
		return nil, fmt.Errorf("invalid status tick %q: %w", spec, err)
	}
	return t, nil
}

// WithClock replaces the time source (tests).
func (t *StatusTicker) WithClock(c generic.Clock) *StatusTicker {
	t.clock = c
	return t
}

// Start runs one tick immediately, then follows the schedule.
func (t *StatusTicker) Start() {
	t.Tick()
	t.cron.Start()
	t.logger.Info("status ticker started", "spec", t.spec)
}

// Stop halts the schedule and waits for a running tick, or for ctx.
func (t *StatusTicker) Stop(ctx context.Context) {
	done := t.cron.Stop()
	select {
	case <-done.Done():
		t.logger.Info("status ticker stopped")
	case <-ctx.Done():
		t.logger.Warn("status ticker stop timed out", "error", ctx.Err())
	}
}

// Tick recomputes the summary now.
func (t *StatusTicker) Tick() TickReport {
	now := t.clock()
	r := TickReport{At: now, Summary: bento.StatusSummary(t.board.Encounters(), now)}

	t.mu.Lock()
	t.last = r
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.observeStatus(r)
	}
	t.logger.Debug("status tick",
		"scheduled", r.Summary[bento.StatusScheduled],
		"in_progress", r.Summary[bento.StatusInProgress],
		"completed", r.Summary[bento.StatusCompleted],
		"cancelled", r.Summary[bento.StatusCancelled])
	return r
}

// Latest returns the last report and whether a tick has happened.
func (t *StatusTicker) Latest() (TickReport, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, !t.last.At.IsZero()
}
