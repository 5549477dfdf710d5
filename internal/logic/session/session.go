// Package session records where each phase invocation keeps its artifacts.
// Sessions replace the implicit "latest file" globals of the shell ancestry:
// the report phase resolves explicit session handles and fails fast when a
// prior phase is missing.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
)

// Phase names one step of the diagnostic workflow.
type Phase string

const (
	PhasePreRestart  Phase = "pre-restart"
	PhasePostRestart Phase = "post-restart"
	PhaseReport      Phase = "report"
)

const sessionFileName = "session.json"

// Session is the artifact-location record for one phase invocation.
type Session struct {
	ID         string    `json:"id"`
	Phase      Phase     `json:"phase"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	Dir        string    `json:"dir"`
}

// TimelinePath returns the path of the session's timeline file.
func (s *Session) TimelinePath() string {
	return filepath.Join(s.Dir, "timeline.jsonl")
}

// SnapshotPath returns the path of the session's snapshot bundle.
func (s *Session) SnapshotPath() string {
	return filepath.Join(s.Dir, "snapshot.json")
}

// DeepDir returns the per-tick deep-capture directory for an elapsed time.
func (s *Session) DeepDir(elapsedSeconds int64) string {
	return filepath.Join(s.Dir, "deep", fmt.Sprintf("%ds", elapsedSeconds))
}

// ReportPath returns the path of the rendered report document.
func (s *Session) ReportPath() string {
	return filepath.Join(s.Dir, "report.md")
}

// Store manages timestamped per-phase artifact directories under one
// diagnostics root, plus a latest-pointer per phase type.
type Store struct {
	logger *slog.Logger
	root   string
}

func NewStore(logger *slog.Logger, root string) *Store {
	return &Store{
		logger: logger,
		root:   root,
	}
}

// Root returns the diagnostics root directory.
func (st *Store) Root() string {
	return st.root
}

// Begin creates the artifact directory for a new phase invocation.
func (st *Store) Begin(phase Phase) (*Session, error) {
	now := time.Now().UTC()
	id := uuid.NewString()[:8]

	dir := filepath.Join(
		st.root,
		fmt.Sprintf("%s-%s-%s", phase, now.Format("20060102-150405"), id),
	)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	return &Session{
		ID:        id,
		Phase:     phase,
		StartedAt: now,
		Dir:       dir,
	}, nil
}

// Finish persists the session record and atomically updates the phase's
// latest-pointer so later phases can resolve it.
func (st *Store) Finish(sess *Session) error {
	sess.FinishedAt = time.Now().UTC()

	if err := st.WriteJSON(filepath.Join(sess.Dir, sessionFileName), sess); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session pointer: %w", err)
	}

	// Atomic replace: a crashed write must not leave a torn pointer behind.
	if err := renameio.WriteFile(st.pointerPath(sess.Phase), raw, 0o644); err != nil {
		return fmt.Errorf("write session pointer: %w", err)
	}

	return nil
}

// Latest resolves the most recent session of a phase. A missing or dangling
// pointer is a missing-phase-data error.
func (st *Store) Latest(phase Phase) (*Session, error) {
	raw, err := os.ReadFile(st.pointerPath(phase))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no %s session recorded", ErrMissingPhaseData, phase)
		}

		return nil, fmt.Errorf("read session pointer: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt %s session pointer: %w", ErrMissingPhaseData, phase, err)
	}

	if _, err := os.Stat(sess.Dir); err != nil {
		return nil, fmt.Errorf(
			"%w: %s session %s points at missing dir %s",
			ErrMissingPhaseData, phase, sess.ID, sess.Dir,
		)
	}

	return &sess, nil
}

// WriteJSON writes v as indented JSON at path.
func (st *Store) WriteJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return nil
}

// ReadJSON reads the JSON document at path into v.
func (st *Store) ReadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}

	return nil
}

func (st *Store) pointerPath(phase Phase) string {
	return filepath.Join(st.root, fmt.Sprintf("latest-%s.json", phase))
}
