package cronparser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsrange/restartdiag/internal/infra/cronparser"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("standard spec returns next occurrence", func(t *testing.T) {
		t.Parallel()

		schedule, err := cronparser.Parse("*/5 * * * *")
		require.NoError(t, err)

		after := time.Date(2026, 8, 1, 12, 3, 0, 0, time.UTC)
		next := schedule.Next(after)
		require.True(t, next.After(after))
		require.Equal(t, 5, next.Minute())
	})

	t.Run("daily spec lands on the requested time", func(t *testing.T) {
		t.Parallel()

		schedule, err := cronparser.Parse("40 7 * * *")
		require.NoError(t, err)

		after := time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
		next := schedule.Next(after)
		require.Equal(t, 7, next.In(time.UTC).Hour())
		require.Equal(t, 40, next.In(time.UTC).Minute())
	})

	t.Run("malformed spec returns error", func(t *testing.T) {
		t.Parallel()

		_, err := cronparser.Parse("invalid")
		require.Error(t, err)
	})

	t.Run("seconds field rejected", func(t *testing.T) {
		t.Parallel()

		_, err := cronparser.Parse("0 0 12 * * *")
		require.Error(t, err)
	})
}
