package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session-manager operation
	// references an unknown session id.
	ErrSessionNotFound = errors.New("hybrid session not found")
)

// InvalidStageError rejects an out-of-order operation on a session whose
// current stage does not permit it, e.g. submitting a human review for a
// completed session without a prior escalation.
type InvalidStageError struct {
	Op    string
	Stage Stage
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("operation %s not allowed in stage %s", e.Op, e.Stage)
}
