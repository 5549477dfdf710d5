package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/opsrange/restartdiag/internal/logic/check"
)

// TimelineFile appends status samples as JSONL. It has exactly one writer
// (the poller) for the duration of a monitoring phase.
type TimelineFile struct {
	f *os.File
	w *bufio.Writer
}

// CreateTimelineFile opens a fresh timeline file for appending.
func CreateTimelineFile(path string) (*TimelineFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create timeline file: %w", err)
	}

	return &TimelineFile{
		f: f,
		w: bufio.NewWriter(f),
	}, nil
}

// Append writes one tick's samples, one JSON object per line, and flushes so
// an interrupted run keeps everything collected so far.
func (t *TimelineFile) Append(samples []check.StatusSample) error {
	for i := range samples {
		raw, err := json.Marshal(samples[i])
		if err != nil {
			return fmt.Errorf("marshal sample: %w", err)
		}

		if _, err := t.w.Write(append(raw, '\n')); err != nil {
			return fmt.Errorf("append sample: %w", err)
		}
	}

	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("flush timeline: %w", err)
	}

	return nil
}

func (t *TimelineFile) Close() error {
	if err := t.w.Flush(); err != nil {
		t.f.Close()

		return fmt.Errorf("flush timeline: %w", err)
	}

	if err := t.f.Close(); err != nil {
		return fmt.Errorf("close timeline: %w", err)
	}

	return nil
}

// LoadTimeline rebuilds a timeline from a JSONL file written by Append,
// re-validating the ordering invariant.
func LoadTimeline(path string) (*check.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timeline file: %w", err)
	}
	defer f.Close()

	var samples []check.StatusSample

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var sample check.StatusSample
		if err := json.Unmarshal(line, &sample); err != nil {
			return nil, fmt.Errorf("parse timeline line: %w", err)
		}

		samples = append(samples, sample)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan timeline file: %w", err)
	}

	return check.FromSamples(samples)
}
