package cronparser

import (
	"fmt"
	"time"

	cron "github.com/netresearch/go-cron"
)

var _parser = cron.MustNewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Schedule computes upcoming occurrences of a parsed cron spec. It satisfies
// the snapshot scheduler's Schedule interface.
type Schedule struct {
	schedule cron.Schedule
}

// Parse compiles a standard five-field cron spec (UTC). Used for the deep
// snapshot cadence when a wall-clock-aligned schedule is preferred over a
// fixed interval.
func Parse(spec string) (*Schedule, error) {
	compiled, err := _parser.Parse("CRON_TZ=UTC " + spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	return &Schedule{schedule: compiled}, nil
}

// Next returns the next occurrence strictly after the given time.
func (s *Schedule) Next(after time.Time) time.Time {
	return s.schedule.Next(after)
}
