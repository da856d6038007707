/*
errors.go - Centralized error types for the production engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Everything here is locally recoverable: a single unit's rejection must
  never abort a batch operation over the rest of the fleet.

ERROR CATEGORIES:
  1. Transition errors - Stage sequence rule violations
  2. Policy rejections - WIP limit enforcement on pause/resume
  3. Lookup errors - Missing units, unknown stages

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, production.ErrInvalidTransition) { ... }

SEE ALSO:
  - stage.go: Produces TransitionError
  - wip.go: Produces WIPLimitError
*/
package production

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTransition is returned when a stage move violates the
	// sequence rules (backward, skip, same-stage, or post-terminal).
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrUnknownStage is returned when a raw stage string cannot be
	// normalized to the canonical sequence.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrUnitNotFound is returned when a referenced unit doesn't exist.
	ErrUnitNotFound = errors.New("unit not found")

	// ErrUnknownModel is returned when a unit's model has no catalog entry.
	ErrUnknownModel = errors.New("model not in catalog")

	// ErrWIPLimitReached is returned when resuming a unit would place the
	// active count in its stage at or above the configured limit.
	ErrWIPLimitReached = errors.New("wip limit reached")

	// ErrNotPausable is returned when pausing a unit outside a work stage
	// or one that is already paused.
	ErrNotPausable = errors.New("unit cannot be paused")

	// ErrNotPaused is returned when resuming a unit that isn't paused.
	ErrNotPaused = errors.New("unit is not paused")

	// ErrSerialImmutable is returned by field edits that try to change a
	// unit's serial number after creation.
	ErrSerialImmutable = errors.New("serial is immutable")

	// ErrDuplicateSerial is returned when creating a unit whose serial
	// already exists.
	ErrDuplicateSerial = errors.New("duplicate serial")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError describes a rejected stage move. Terminal distinguishes
// "already closed" from "cannot skip stages".
type TransitionError struct {
	From      Stage
	To        Stage
	Terminal  bool
	NextValid Stage
}

func (e *TransitionError) Error() string {
	if e.Terminal {
		return fmt.Sprintf("cannot move %s -> %s: %s is a terminal state", e.From, e.To, e.From)
	}
	return fmt.Sprintf("cannot move %s -> %s: cannot skip stages, next valid is %s", e.From, e.To, e.NextValid)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// UnknownStageError reports a stage string that failed normalization.
type UnknownStageError struct {
	Raw string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Raw)
}

func (e *UnknownStageError) Unwrap() error { return ErrUnknownStage }

// WIPLimitError reports a resume rejected by WIP enforcement. This is a
// policy rejection, not a data error: no state changes.
type WIPLimitError struct {
	Stage  Stage
	Limit  int
	Active int
}

func (e *WIPLimitError) Error() string {
	return fmt.Sprintf("resume blocked: %d of %d active units already in %s", e.Active, e.Limit, e.Stage)
}

func (e *WIPLimitError) Unwrap() error { return ErrWIPLimitReached }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// or a policy rejection (HTTP 4xx territory).
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUnknownStage) ||
		errors.Is(err, ErrWIPLimitReached) ||
		errors.Is(err, ErrNotPausable) ||
		errors.Is(err, ErrNotPaused) ||
		errors.Is(err, ErrSerialImmutable) ||
		errors.Is(err, ErrDuplicateSerial)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnitNotFound) || errors.Is(err, ErrUnknownModel)
}
