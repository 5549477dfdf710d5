package check

import "fmt"

// Timeline is the append-only, time-ordered record of all samples collected
// during one monitoring phase. It has exactly one producer (the poller) and is
// never mutated after the phase completes.
type Timeline struct {
	samples []StatusSample
	lastAt  map[string]int64
}

func NewTimeline() *Timeline {
	return &Timeline{
		lastAt: make(map[string]int64),
	}
}

// Append adds one tick's samples. All samples of a tick share the same
// elapsed time; per-component elapsed times must be non-decreasing.
func (t *Timeline) Append(samples []StatusSample) error {
	for i := range samples {
		last, seen := t.lastAt[samples[i].ComponentID]
		if seen && samples[i].ElapsedSeconds < last {
			return fmt.Errorf(
				"%w: component %s at %ds after %ds",
				ErrOutOfOrderSample, samples[i].ComponentID, samples[i].ElapsedSeconds, last,
			)
		}
	}

	for i := range samples {
		t.lastAt[samples[i].ComponentID] = samples[i].ElapsedSeconds
		t.samples = append(t.samples, samples[i])
	}

	return nil
}

// Samples returns the recorded samples in append order.
func (t *Timeline) Samples() []StatusSample {
	return t.samples
}

func (t *Timeline) Len() int {
	return len(t.samples)
}

// FromSamples rebuilds a timeline from persisted samples, re-checking the
// per-component ordering invariant.
func FromSamples(samples []StatusSample) (*Timeline, error) {
	t := NewTimeline()
	for i := range samples {
		if err := t.Append(samples[i : i+1]); err != nil {
			return nil, err
		}
	}

	return t, nil
}
