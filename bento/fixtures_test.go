package bento_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/generic/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBoard(t *testing.T, opts ...bento.Option) (*bento.Board, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	base := []bento.Option{
		bento.WithStore(mem, "test"),
		bento.WithLogger(quietLogger()),
		bento.WithIDGenerator(sequentialIDs("id")),
		bento.WithClock(generic.FixedClock(monday)),
	}
	return bento.NewBoard(append(base, opts...)...), mem
}

var (
	staffDana   = bento.Atom{Kind: bento.KindStaff, ID: "s-dana", Name: "Dana Reyes"}
	staffLee    = bento.Atom{Kind: bento.KindStaff, ID: "s-lee", Name: "Lee Park", Initials: "LP"}
	activityPT  = bento.Atom{Kind: bento.KindActivity, ID: "a-pt", Name: "Physical Therapy", Code: "PT"}
	clientAmy   = bento.Atom{Kind: bento.KindClient, ID: "c-amy", Name: "Amy"}
	clientBo    = bento.Atom{Kind: bento.KindClient, ID: "c-bo", Name: "Bo"}
	groupFour   = bento.Atom{Kind: bento.KindClientGroup, ID: "g-four", Name: "Morning group", ClientIDs: []string{"c-1", "c-2", "c-3", "c-4"}}
	location1   = bento.Atom{Kind: bento.KindLocation, ID: "l-gym", Name: "Gym", Address: "1 Main St"}
	duration90  = bento.Atom{Kind: bento.KindDuration, ID: "d-90", Name: "90 minutes", Minutes: 90}
	duration60  = bento.Atom{Kind: bento.KindDuration, ID: "d-60", Minutes: 60, Label: "1 hr"}
	fullLibrary = []bento.Atom{staffDana, staffLee, activityPT, clientAmy, clientBo, groupFour, location1, duration90, duration60}
)

func seedLibrary(t *testing.T, b *bento.Board) {
	t.Helper()
	ctx := context.Background()
	for _, a := range fullLibrary {
		_, err := b.AddAtom(ctx, a, a.Kind)
		require.NoError(t, err)
	}
}

// ptDraft is a valid two-client physical therapy draft.
func ptDraft(id string) bento.Draft {
	d := bento.Draft{ID: id, Name: "PT session", Color: "#123456"}
	for _, a := range []bento.Atom{staffDana, activityPT, clientAmy, clientBo, location1, duration90} {
		if err := d.Add(a); err != nil {
			panic(err)
		}
	}
	return d
}

// composedBoard returns a board with the library and the "tpl-pt" template.
func composedBoard(t *testing.T, opts ...bento.Option) (*bento.Board, *store.Memory) {
	t.Helper()
	b, mem := newTestBoard(t, opts...)
	seedLibrary(t, b)
	_, err := b.ComposeTemplate(context.Background(), ptDraft("tpl-pt"))
	require.NoError(t, err)
	return b, mem
}
