/*
stage.go - Canonical stage sequence and transition rules

PURPOSE:
  Defines the fixed production pipeline and validates that stage moves are
  strictly sequential: one step forward, never backward, never skipping,
  with CLOSED as the terminal state.

NORMALIZATION BOUNDARY:
  Legacy data carries loose spellings ("POWDER COAT", "TESTING",
  "SHIPPING"). ParseStage folds these into canonical values exactly once
  at ingestion; the in-memory representation never contains aliases.

SEE ALSO:
  - errors.go: TransitionError carried back to callers
  - wip.go: Stage-entry WIP enforcement layered on top of these rules
*/
package production

import "strings"

// Stage is one step in the fixed production sequence.
type Stage string

const (
	StageQueue           Stage = "QUEUE"
	StageFabrication     Stage = "FABRICATION"
	StageStagedForPowder Stage = "STAGED_FOR_POWDER"
	StagePowderCoat      Stage = "POWDER_COAT"
	StageAssembly        Stage = "ASSEMBLY"
	StageShip            Stage = "SHIP"
	StageClosed          Stage = "CLOSED"
)

// StageSequence is the canonical pipeline order.
var StageSequence = []Stage{
	StageQueue,
	StageFabrication,
	StageStagedForPowder,
	StagePowderCoat,
	StageAssembly,
	StageShip,
	StageClosed,
}

// ProductionStages are the four stages that carry a duration. Staged-for-
// powder is a zero-width buffer marker and CLOSED is terminal.
var ProductionStages = []Stage{
	StageFabrication,
	StagePowderCoat,
	StageAssembly,
	StageShip,
}

// stageAliases maps legacy spellings onto the canonical sequence. The
// older data model tracked TESTING and SHIPPING as separate steps; SHIP
// absorbs both.
var stageAliases = map[string]Stage{
	"POWDER COAT":       StagePowderCoat,
	"POWDERCOAT":        StagePowderCoat,
	"STAGED FOR POWDER": StageStagedForPowder,
	"TESTING":           StageShip,
	"SHIPPING":          StageShip,
	"DONE":              StageClosed,
}

// StageIndex returns the position of s in the canonical sequence,
// or -1 if s is not a known stage.
func StageIndex(s Stage) int {
	for i, stage := range StageSequence {
		if stage == s {
			return i
		}
	}
	return -1
}

// ParseStage normalizes a raw stage string to its canonical value.
// This is the single normalization boundary: call it on every external
// input (API payloads, stored rows) and never afterwards.
func ParseStage(raw string) (Stage, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := stageAliases[cleaned]; ok {
		return alias, nil
	}
	candidate := Stage(strings.ReplaceAll(cleaned, " ", "_"))
	if StageIndex(candidate) >= 0 {
		return candidate, nil
	}
	return "", &UnknownStageError{Raw: raw}
}

// NextStage returns the stage immediately following s. The second return
// is false when s is terminal or unknown.
func NextStage(s Stage) (Stage, bool) {
	i := StageIndex(s)
	if i < 0 || i == len(StageSequence)-1 {
		return "", false
	}
	return StageSequence[i+1], true
}

// CanTransition validates a stage move. Returns nil iff the move is
// exactly one step forward in the canonical sequence. The error is a
// *TransitionError carrying the specific reason (terminal vs skip).
func CanTransition(from, to Stage) error {
	fromIdx, toIdx := StageIndex(from), StageIndex(to)
	if fromIdx < 0 {
		return &UnknownStageError{Raw: string(from)}
	}
	if toIdx < 0 {
		return &UnknownStageError{Raw: string(to)}
	}
	if from == StageClosed {
		return &TransitionError{From: from, To: to, Terminal: true}
	}
	if toIdx != fromIdx+1 {
		next, _ := NextStage(from)
		return &TransitionError{From: from, To: to, NextValid: next}
	}
	return nil
}

// IsWorkStage reports whether s is a staffed, work-performing stage
// where pausing is meaningful.
func (s Stage) IsWorkStage() bool {
	return s == StageFabrication || s == StageAssembly || s == StageShip
}

// IsTerminal reports whether s ends the pipeline.
func (s Stage) IsTerminal() bool { return s == StageClosed }

// MidProduction reports whether a unit in this stage is past QUEUE but not
// yet CLOSED, so its timeline starts at the current stage.
func (s Stage) MidProduction() bool {
	return s != StageQueue && s != StageClosed && StageIndex(s) >= 0
}
