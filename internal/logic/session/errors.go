package session

import "errors"

// ErrMissingPhaseData is returned when the report phase cannot resolve the
// artifacts of a required prior phase.
var ErrMissingPhaseData = errors.New("missing phase data")
