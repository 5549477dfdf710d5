package check_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opsrange/restartdiag/internal/logic/check"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	t.Run("zero total is no pods", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, check.StatusNoPods, check.Ratio(0, 0).Kind)
	})

	t.Run("all ready", func(t *testing.T) {
		t.Parallel()

		s := check.Ratio(3, 3)
		require.Equal(t, check.StatusReady, s.Kind)
		require.Equal(t, 3, s.Ready)
		require.Equal(t, 3, s.Total)
	})

	t.Run("some ready is partial", func(t *testing.T) {
		t.Parallel()

		s := check.Ratio(1, 3)
		require.Equal(t, check.StatusPartial, s.Kind)
		require.Equal(t, "PARTIAL(1/3)", s.String())
	})
}

func TestStatus_IsReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give check.Status
		want bool
	}{
		{"ready", check.Ready(2), true},
		{"partial", check.Partial(1, 2), false},
		{"not found", check.NotFound(), false},
		{"no pods", check.NoPods(), false},
		{"unknown", check.Unknown(), false},
		{"exists", check.Exists(), true},
		{"pvc bound", check.Phase("Bound"), true},
		{"pvc pending", check.Phase("Pending"), false},
		{"job complete", check.Phase("Complete"), true},
		{"job failed", check.Phase("Failed(BackoffLimitExceeded)"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, tt.give.IsReady())
		})
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "READY", check.Ready(1).String())
	require.Equal(t, "NOT_FOUND", check.NotFound().String())
	require.Equal(t, "Bound", check.Phase("Bound").String())
	require.Equal(t, "PARTIAL(0/2)", check.Partial(0, 2).String())
}
