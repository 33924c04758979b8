package store

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/voiceguess/internal/game"
	"github.com/robalobadob/voiceguess/internal/session"
)

func memoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := New(DriverSQLite, memoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Store{
		DriverMemory: NewMemoryStore(),
		DriverSQLite: sq,
	}
}

func snapshot(id string, at time.Time) session.Snapshot {
	return session.Snapshot{
		ID: id,
		State: game.State{
			Mode:                modeFor(id),
			MaxNumber:           100,
			Attempts:            3,
			TargetNumber:        42,
			LowBound:            26,
			HighBound:           49,
			CurrentGuess:        37,
			ContinuousListening: true,
		},
		Speaking:  true,
		UpdatedAt: at.UTC(),
	}
}

// modeFor varies the stored mode so a round trip proves the column is used.
func modeFor(id string) game.Mode {
	if len(id)%2 == 0 {
		return game.ModeReversePlaying
	}
	return game.ModeClassicPlaying
}

func TestStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 30, 0, 123456789, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			want := snapshot("abc", now)
			require.NoError(t, s.Save(ctx, want))

			got, err := s.Get(ctx, "abc")
			require.NoError(t, err)
			assert.Equal(t, want, got)

			want.State.Mode = game.ModeReverseWon
			want.Speaking = false
			want.UpdatedAt = now.Add(time.Minute)
			require.NoError(t, s.Save(ctx, want))
			got, err = s.Get(ctx, "abc")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
		})
	}
}

func TestStore_DeleteAndPrune(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, snapshot("old-1", base)))
			require.NoError(t, s.Save(ctx, snapshot("old-2", base.Add(time.Hour))))
			require.NoError(t, s.Save(ctx, snapshot("fresh", base.Add(3*time.Hour))))
			require.NoError(t, s.Save(ctx, snapshot("gone", base.Add(3*time.Hour))))

			require.NoError(t, s.Delete(ctx, "gone"))
			_, err := s.Get(ctx, "gone")
			assert.ErrorIs(t, err, ErrNotFound)

			n, err := s.Prune(ctx, base.Add(2*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, err = s.Get(ctx, "old-1")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Get(ctx, "fresh")
			assert.NoError(t, err)
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New("postgres", "")
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := openDB(memoryDSN())
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte(`CREATE TABLE a (x INTEGER);`)},
		"002_b.sql": {Data: []byte(`CREATE TABLE b (y INTEGER);`)},
		"notes.txt": {Data: []byte(`not a migration`)},
	}
	require.NoError(t, migrate(db, fsys))
	require.NoError(t, migrate(db, fsys))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sessions.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), snapshot("f", time.Now())))
	require.NoError(t, s.Close())

	// Reopening applies no migration twice and keeps the rows.
	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.Get(context.Background(), "f")
	assert.NoError(t, err)
}
