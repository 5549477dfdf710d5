package snapshot_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsrange/restartdiag/internal/logic/cluster"
	"github.com/opsrange/restartdiag/internal/logic/snapshot"
)

func TestFixedInterval(t *testing.T) {
	t.Parallel()

	after := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	next := snapshot.FixedInterval(60 * time.Second).Next(after)
	require.Equal(t, after.Add(time.Minute), next)
}

func TestScheduler_ObserveTick(t *testing.T) {
	t.Parallel()

	dirFor := func(root string) func(int64) string {
		return func(elapsed int64) string {
			return filepath.Join(root, "deep", strconv.FormatInt(elapsed, 10)+"s")
		}
	}

	t.Run("not due yet does nothing", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		repo := &fakeRepo{pods: []cluster.PodInfo{crashingPod("db-0")}}

		sched := snapshot.NewScheduler(
			slog.Default(), repo, "apps",
			snapshot.FixedInterval(time.Hour),
			dirFor(root), time.Second,
		)

		sched.ObserveTick(t.Context(), 10)

		_, err := os.Stat(filepath.Join(root, "deep"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("due capture writes listing and unhealthy pod bundles", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		repo := &fakeRepo{
			pods:   []cluster.PodInfo{healthyPod("web-0"), crashingPod("db-0")},
			events: []cluster.EventInfo{{Reason: "BackOff", Object: "Pod/db-0"}},
			logs: map[string]string{
				"db-0/main":          "panic: connection refused",
				"db-0/main/previous": "fatal: disk not mounted",
			},
		}

		sched := snapshot.NewScheduler(
			slog.Default(), repo, "apps",
			snapshot.FixedInterval(0),
			dirFor(root), time.Second,
		)

		sched.ObserveTick(t.Context(), 120)

		dir := filepath.Join(root, "deep", "120s")
		require.FileExists(t, filepath.Join(dir, "pods.json"))
		require.FileExists(t, filepath.Join(dir, "events.json"))

		// Unhealthy pod gets describe, current and previous logs.
		require.FileExists(t, filepath.Join(dir, "db-0.describe.json"))
		require.FileExists(t, filepath.Join(dir, "db-0.main.log"))
		require.FileExists(t, filepath.Join(dir, "db-0.main.prev.log"))

		// Healthy pods are listed but not deep-captured.
		require.NoFileExists(t, filepath.Join(dir, "web-0.describe.json"))

		raw, err := os.ReadFile(filepath.Join(dir, "db-0.main.log"))
		require.NoError(t, err)
		require.Contains(t, string(raw), "connection refused")
	})

	t.Run("consecutive due ticks use separate directories", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		repo := &fakeRepo{pods: []cluster.PodInfo{healthyPod("web-0")}}

		sched := snapshot.NewScheduler(
			slog.Default(), repo, "apps",
			snapshot.FixedInterval(0),
			dirFor(root), time.Second,
		)

		sched.ObserveTick(t.Context(), 60)
		sched.ObserveTick(t.Context(), 120)

		require.FileExists(t, filepath.Join(root, "deep", "60s", "pods.json"))
		require.FileExists(t, filepath.Join(root, "deep", "120s", "pods.json"))
	})
}
