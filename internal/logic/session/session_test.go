package session_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opsrange/restartdiag/internal/logic/check"
	"github.com/opsrange/restartdiag/internal/logic/session"
)

func TestStore_BeginFinishLatest(t *testing.T) {
	t.Parallel()

	t.Run("finish makes the session resolvable", func(t *testing.T) {
		t.Parallel()

		store := session.NewStore(slog.Default(), t.TempDir())

		sess, err := store.Begin(session.PhasePreRestart)
		require.NoError(t, err)
		require.DirExists(t, sess.Dir)
		require.Equal(t, session.PhasePreRestart, sess.Phase)
		require.NotEmpty(t, sess.ID)

		require.NoError(t, store.Finish(sess))
		require.False(t, sess.FinishedAt.IsZero())

		got, err := store.Latest(session.PhasePreRestart)
		require.NoError(t, err)
		require.Equal(t, sess.ID, got.ID)
		require.Equal(t, sess.Dir, got.Dir)
	})

	t.Run("latest tracks the most recent finish per phase", func(t *testing.T) {
		t.Parallel()

		store := session.NewStore(slog.Default(), t.TempDir())

		first, err := store.Begin(session.PhasePostRestart)
		require.NoError(t, err)
		require.NoError(t, store.Finish(first))

		second, err := store.Begin(session.PhasePostRestart)
		require.NoError(t, err)
		require.NoError(t, store.Finish(second))

		got, err := store.Latest(session.PhasePostRestart)
		require.NoError(t, err)
		require.Equal(t, second.ID, got.ID)
	})

	t.Run("phases resolve independently", func(t *testing.T) {
		t.Parallel()

		store := session.NewStore(slog.Default(), t.TempDir())

		pre, err := store.Begin(session.PhasePreRestart)
		require.NoError(t, err)
		require.NoError(t, store.Finish(pre))

		_, err = store.Latest(session.PhasePreRestart)
		require.NoError(t, err)

		_, err = store.Latest(session.PhasePostRestart)
		require.ErrorIs(t, err, session.ErrMissingPhaseData)
	})

	t.Run("missing phase is missing-phase-data", func(t *testing.T) {
		t.Parallel()

		store := session.NewStore(slog.Default(), t.TempDir())

		_, err := store.Latest(session.PhasePreRestart)
		require.ErrorIs(t, err, session.ErrMissingPhaseData)
	})

	t.Run("corrupt pointer is missing-phase-data", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		store := session.NewStore(slog.Default(), root)

		require.NoError(t, os.WriteFile(
			filepath.Join(root, "latest-pre-restart.json"),
			[]byte("{not json"),
			0o644,
		))

		_, err := store.Latest(session.PhasePreRestart)
		require.ErrorIs(t, err, session.ErrMissingPhaseData)
	})

	t.Run("pointer at deleted dir is missing-phase-data", func(t *testing.T) {
		t.Parallel()

		store := session.NewStore(slog.Default(), t.TempDir())

		sess, err := store.Begin(session.PhasePostRestart)
		require.NoError(t, err)
		require.NoError(t, store.Finish(sess))
		require.NoError(t, os.RemoveAll(sess.Dir))

		_, err = store.Latest(session.PhasePostRestart)
		require.ErrorIs(t, err, session.ErrMissingPhaseData)
	})

	t.Run("unfinished session is not resolvable", func(t *testing.T) {
		t.Parallel()

		store := session.NewStore(slog.Default(), t.TempDir())

		_, err := store.Begin(session.PhasePreRestart)
		require.NoError(t, err)

		_, err = store.Latest(session.PhasePreRestart)
		require.ErrorIs(t, err, session.ErrMissingPhaseData)
	})
}

func TestStore_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	store := session.NewStore(slog.Default(), t.TempDir())
	path := filepath.Join(store.Root(), "payload.json")

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.WriteJSON(path, payload{Name: "x", Count: 3}))

	var got payload
	require.NoError(t, store.ReadJSON(path, &got))
	require.Equal(t, payload{Name: "x", Count: 3}, got)
}

func TestTimelineFile(t *testing.T) {
	t.Parallel()

	t.Run("append and reload", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "timeline.jsonl")

		tf, err := session.CreateTimelineFile(path)
		require.NoError(t, err)

		tick := func(elapsed int64, status check.Status) []check.StatusSample {
			return []check.StatusSample{{
				ElapsedSeconds: elapsed,
				ComponentID:    "db",
				Status:         status,
			}}
		}

		require.NoError(t, tf.Append(tick(0, check.Partial(0, 1))))
		require.NoError(t, tf.Append(tick(10, check.Ready(1))))
		require.NoError(t, tf.Close())

		tl, err := session.LoadTimeline(path)
		require.NoError(t, err)
		require.Equal(t, 2, tl.Len())
		require.Equal(t, check.StatusReady, tl.Samples()[1].Status.Kind)
	})

	t.Run("each tick is flushed before close", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "timeline.jsonl")

		tf, err := session.CreateTimelineFile(path)
		require.NoError(t, err)

		require.NoError(t, tf.Append([]check.StatusSample{{
			ComponentID: "db",
			Status:      check.Ready(1),
		}}))

		// Simulating an interrupted run: the file is readable without Close.
		tl, err := session.LoadTimeline(path)
		require.NoError(t, err)
		require.Equal(t, 1, tl.Len())

		require.NoError(t, tf.Close())
	})

	t.Run("load missing file fails", func(t *testing.T) {
		t.Parallel()

		_, err := session.LoadTimeline(filepath.Join(t.TempDir(), "absent.jsonl"))
		require.Error(t, err)
	})

	t.Run("load rejects corrupt ordering", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "timeline.jsonl")
		content := `{"elapsedSeconds":10,"componentId":"db","status":{"kind":"READY","ready":1,"total":1},"timestamp":"2026-08-01T12:00:10Z"}
{"elapsedSeconds":0,"componentId":"db","status":{"kind":"PARTIAL","ready":0,"total":1},"timestamp":"2026-08-01T12:00:00Z"}
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := session.LoadTimeline(path)
		require.ErrorIs(t, err, check.ErrOutOfOrderSample)
	})
}
