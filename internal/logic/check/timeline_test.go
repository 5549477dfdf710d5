package check_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsrange/restartdiag/internal/logic/check"
)

func sample(component string, elapsed int64, status check.Status) check.StatusSample {
	return check.StatusSample{
		Timestamp:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(elapsed) * time.Second),
		ElapsedSeconds: elapsed,
		ComponentID:    component,
		Status:         status,
	}
}

func TestTimeline_Append(t *testing.T) {
	t.Parallel()

	t.Run("ticks accumulate in order", func(t *testing.T) {
		t.Parallel()

		tl := check.NewTimeline()

		require.NoError(t, tl.Append([]check.StatusSample{
			sample("db", 0, check.Partial(0, 1)),
			sample("api", 0, check.NotFound()),
		}))
		require.NoError(t, tl.Append([]check.StatusSample{
			sample("db", 10, check.Ready(1)),
			sample("api", 10, check.Partial(0, 1)),
		}))

		require.Equal(t, 4, tl.Len())
		require.Equal(t, "db", tl.Samples()[0].ComponentID)
		require.Equal(t, int64(10), tl.Samples()[3].ElapsedSeconds)
	})

	t.Run("equal elapsed is allowed", func(t *testing.T) {
		t.Parallel()

		tl := check.NewTimeline()
		require.NoError(t, tl.Append([]check.StatusSample{sample("db", 5, check.Ready(1))}))
		require.NoError(t, tl.Append([]check.StatusSample{sample("db", 5, check.Ready(1))}))
	})

	t.Run("regressing elapsed is rejected", func(t *testing.T) {
		t.Parallel()

		tl := check.NewTimeline()
		require.NoError(t, tl.Append([]check.StatusSample{sample("db", 10, check.Ready(1))}))

		err := tl.Append([]check.StatusSample{sample("db", 5, check.Ready(1))})
		require.ErrorIs(t, err, check.ErrOutOfOrderSample)
		// A rejected tick leaves the timeline unchanged.
		require.Equal(t, 1, tl.Len())
	})

	t.Run("ordering is tracked per component", func(t *testing.T) {
		t.Parallel()

		tl := check.NewTimeline()
		require.NoError(t, tl.Append([]check.StatusSample{sample("db", 10, check.Ready(1))}))
		// A different component may start later at a smaller elapsed time.
		require.NoError(t, tl.Append([]check.StatusSample{sample("api", 5, check.NotFound())}))
	})
}

func TestFromSamples(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		samples := []check.StatusSample{
			sample("db", 0, check.Partial(0, 1)),
			sample("db", 10, check.Ready(1)),
		}

		tl, err := check.FromSamples(samples)
		require.NoError(t, err)
		require.Equal(t, samples, tl.Samples())
	})

	t.Run("corrupt ordering rejected", func(t *testing.T) {
		t.Parallel()

		_, err := check.FromSamples([]check.StatusSample{
			sample("db", 10, check.Ready(1)),
			sample("db", 0, check.Partial(0, 1)),
		})
		require.ErrorIs(t, err, check.ErrOutOfOrderSample)
	})
}
