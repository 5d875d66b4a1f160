package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
	"github.com/warp/bentobox/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Get(ctx, "board")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	require.NoError(t, s.Put(ctx, "board", []byte(`{"v":1}`)))
	require.NoError(t, s.Put(ctx, "board", []byte(`{"v":2}`)))
	require.NoError(t, s.Put(ctx, "other", nil))

	got, err := s.Get(ctx, "board")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got), "last write wins")

	empty, err := s.Get(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_FileSurvivesReopen(t *testing.T) {
	// GIVEN: A board persisted to a SQLite file
	// WHEN: The file is reopened and the board loaded
	// THEN: The library and placements come back

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bentobox.db")
	quiet := bento.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	s, err := sqlite.New(path)
	require.NoError(t, err)
	b, err := bento.Load(ctx, s, generic.DefaultStoreKey, quiet)
	require.NoError(t, err)

	_, err = b.AddAtom(ctx, bento.Atom{ID: "s1", Name: "Sam Ito"}, bento.KindStaff)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	reloaded, err := bento.Load(ctx, s, generic.DefaultStoreKey, quiet)
	require.NoError(t, err)
	staff, ok := reloaded.Atom(bento.KindStaff, "s1")
	require.True(t, ok)
	assert.Equal(t, "Sam Ito", staff.Name)
}
